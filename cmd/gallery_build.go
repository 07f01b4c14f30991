package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/starmatch/internal/config"
	"github.com/kozaktomas/starmatch/internal/embedding"
	"github.com/kozaktomas/starmatch/internal/gallery"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var galleryBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the gallery from reference images",
	Long: `Scan the gallery directory, compute one face embedding per image and
persist the result. Images without a detectable face are skipped; a single
unreadable file never aborts the build.

Examples:
  # Build from the default directory (static/gallery)
  starmatch gallery build

  # Build from a custom directory
  starmatch gallery build --dir /data/faces`,
	RunE: runGalleryBuild,
}

func init() {
	galleryCmd.AddCommand(galleryBuildCmd)

	galleryBuildCmd.Flags().String("dir", "", "Directory with reference images (defaults to GALLERY_DIR)")
}

func runGalleryBuild(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	dir := mustGetString(cmd, "dir")
	if dir == "" {
		dir = cfg.Gallery.Dir
	}

	repo, cleanup, err := newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	builder := gallery.NewBuilder(newDetector(cfg), embedding.ParsePolicy(cfg.Gallery.FacePolicy))

	var bar *progressbar.ProgressBar
	builder.Progress = func(processed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Encoding faces"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("images"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		_ = bar.Set(processed)
	}

	fmt.Printf("Building gallery from %s\n", dir)
	stats, err := builder.BuildAndSave(ctx, dir, repo)
	if err != nil {
		return fmt.Errorf("building gallery: %w", err)
	}

	fmt.Printf("\nGallery built: %d images scanned, %d faces encoded, %d without a face, %d failed\n",
		stats.Scanned, stats.Encoded, stats.NoFace, stats.Failed)
	return nil
}
