package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/starmatch/internal/config"
	"github.com/kozaktomas/starmatch/internal/gallery"
	"github.com/spf13/cobra"
)

var galleryInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show gallery contents",
	RunE:  runGalleryInfo,
}

func init() {
	galleryCmd.AddCommand(galleryInfoCmd)

	galleryInfoCmd.Flags().Bool("entries", false, "List every gallery entry")
}

func runGalleryInfo(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	repo, cleanup, err := newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := repo.Load(ctx)
	if errors.Is(err, gallery.ErrArtifactMissing) {
		fmt.Println("No gallery yet. Run 'starmatch gallery build' first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading gallery: %w", err)
	}

	labels, err := gallery.LoadLabels(cfg.Gallery.LabelsPath)
	if err != nil {
		return fmt.Errorf("loading gallery labels: %w", err)
	}

	dim := 0
	if len(entries) > 0 {
		dim = len(entries[0].Embedding)
	}
	fmt.Printf("Gallery: %d entries, %d-dimensional embeddings, %d explicit labels\n",
		len(entries), dim, labels.Len())

	if !mustGetBool(cmd, "entries") {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tLABEL")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\n", entry.Path, labels.For(entry.Path))
	}
	return w.Flush()
}
