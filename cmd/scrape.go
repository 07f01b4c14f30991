package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/starmatch/internal/config"
	"github.com/kozaktomas/starmatch/internal/scrape"
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <video>",
	Short: "Extract face crops from a video into the gallery directory",
	Long: `Sample frames from a video with ffmpeg, detect faces in each frame and
save high-quality face crops as reference images. Crops land in the gallery
directory; run 'starmatch gallery build' afterwards to index them.

Requires ffmpeg on PATH.

Examples:
  # Scrape one frame every 2 seconds
  starmatch scrape movie.mp4

  # Denser sampling and a custom output prefix
  starmatch scrape movie.mp4 --interval 0.5 --prefix hero`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().Float64("interval", 2.0, "Seconds between sampled frames")
	scrapeCmd.Flags().Float64("min-score", 0, "Minimum detection score (default 0.98)")
	scrapeCmd.Flags().Int("min-width", 0, "Minimum face bounding-box width in pixels (default 60)")
	scrapeCmd.Flags().String("out", "", "Output directory (defaults to GALLERY_DIR)")
	scrapeCmd.Flags().String("prefix", "", "Output file name prefix (defaults to the video name)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	outDir := mustGetString(cmd, "out")
	if outDir == "" {
		outDir = cfg.Gallery.Dir
	}

	scraper := scrape.New(newDetector(cfg))
	opts := scrape.Options{
		FrameInterval: mustGetFloat64(cmd, "interval"),
		MinDetScore:   mustGetFloat64(cmd, "min-score"),
		MinFaceWidth:  mustGetInt(cmd, "min-width"),
		Prefix:        mustGetString(cmd, "prefix"),
	}

	fmt.Printf("Scraping %s into %s\n", args[0], outDir)
	stats, err := scraper.Run(ctx, args[0], outDir, opts)
	if err != nil {
		return fmt.Errorf("scraping video: %w", err)
	}

	fmt.Printf("Done: %d frames, %d faces seen, %d saved (%d low score, %d too small, %d frame failures)\n",
		stats.Frames, stats.Faces, stats.Saved, stats.LowScore, stats.SmallFace, stats.FrameFails)
	return nil
}
