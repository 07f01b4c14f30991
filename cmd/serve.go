package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/starmatch/internal/config"
	"github.com/kozaktomas/starmatch/internal/embedding"
	"github.com/kozaktomas/starmatch/internal/gallery"
	"github.com/kozaktomas/starmatch/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Starmatch web server.
The server exposes the selfie upload endpoint, serves the gallery images
and the landing page. Build the gallery first with 'starmatch gallery build'.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// newEngine wires the match engine, optionally with a prebuilt index.
// The HNSW index trades the linear scan's exactness for speed and only makes
// sense once the gallery outgrows a few hundred entries.
func newEngine(ctx context.Context, cfg *config.Config, repo gallery.Repository, detector *embedding.Client) (*gallery.Engine, error) {
	policy := embedding.ParsePolicy(cfg.Gallery.FacePolicy)

	if store, ok := repo.(*gallery.PostgresStore); ok {
		// Nearest-neighbor search pushed down to pgvector.
		return gallery.NewEngineWithIndex(store, detector, policy), nil
	}

	if cfg.Web.UseHNSW {
		entries, err := repo.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading gallery for index build: %w", err)
		}
		index := gallery.NewHNSWIndex(entries)
		fmt.Printf("HNSW index built with %d entries\n", index.Count())
		return gallery.NewEngineWithIndex(index, detector, policy), nil
	}

	return gallery.NewEngine(repo, detector, policy), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	detector := newDetector(cfg)
	repo, cleanup, err := newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	engine, err := newEngine(ctx, cfg, repo, detector)
	if err != nil {
		return err
	}

	labels, err := gallery.LoadLabels(cfg.Gallery.LabelsPath)
	if err != nil {
		return fmt.Errorf("loading gallery labels: %w", err)
	}

	roaster := newRoaster(ctx, cfg)
	if cfg.Roast.Enabled {
		fmt.Println("Roast mode on: responses carry a roast instead of the confidence score")
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, engine, roaster, labels)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Starmatch on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
