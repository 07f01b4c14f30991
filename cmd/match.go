package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/starmatch/internal/config"
	"github.com/kozaktomas/starmatch/internal/embedding"
	"github.com/kozaktomas/starmatch/internal/gallery"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <image>",
	Short: "Match a single image against the gallery",
	Long: `Run the match pipeline once from the command line: detect a face in
the given image, compare it against every gallery entry and print the best
match with its distance and confidence score.

Examples:
  # Match a selfie
  starmatch match selfie.jpg

  # Output as JSON, with a roast line
  starmatch match selfie.jpg --json --roast`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Bool("json", false, "Output as JSON")
	matchCmd.Flags().Bool("roast", false, "Also print a roast line for the match")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	imageData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	repo, cleanup, err := newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := gallery.NewEngine(repo, newDetector(cfg), embedding.ParsePolicy(cfg.Gallery.FacePolicy))
	result, err := engine.Match(ctx, imageData)
	if err != nil {
		return err
	}

	labels, err := gallery.LoadLabels(cfg.Gallery.LabelsPath)
	if err != nil {
		return fmt.Errorf("loading gallery labels: %w", err)
	}
	label := labels.For(result.Path)

	var roastLine string
	if mustGetBool(cmd, "roast") {
		cfg.Roast.Enabled = true
		roastLine = newRoaster(ctx, cfg).Roast(ctx, label, result.Confidence)
	}

	if mustGetBool(cmd, "json") {
		out := map[string]any{
			"path":       result.Path,
			"label":      label,
			"distance":   result.Distance,
			"confidence": result.Confidence,
		}
		if roastLine != "" {
			out["roast_message"] = roastLine
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Best match: %s (%s)\n", label, result.Path)
	fmt.Printf("  Distance:   %.4f\n", result.Distance)
	fmt.Printf("  Confidence: %d/99\n", result.Confidence)
	if roastLine != "" {
		fmt.Printf("  Roast:      %s\n", roastLine)
	}
	return nil
}
