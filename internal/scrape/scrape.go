// Package scrape extracts face crops from video files to seed the gallery.
// Frames are pulled with ffmpeg, run through the face detector, and crops
// that pass the quality filters are written as JPEG reference images.
package scrape

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kozaktomas/starmatch/internal/constants"
	"github.com/kozaktomas/starmatch/internal/embedding"
)

// Options control one scrape run.
type Options struct {
	FrameInterval float64 // seconds between sampled frames (default 2.0)
	MinDetScore   float64 // minimum detector confidence (default constants.MinDetectionScore)
	MinFaceWidth  int     // minimum bounding-box width in pixels (default constants.MinFaceWidth)
	Prefix        string  // output file name prefix (default video file base name)
}

// Stats summarizes one scrape run.
type Stats struct {
	Frames     int // frames extracted from the video
	Faces      int // faces detected across all frames
	LowScore   int // faces rejected by the detection-score filter
	SmallFace  int // faces rejected by the minimum-width filter
	Saved      int // crops written to the output directory
	FrameFails int // frames the detector could not process
}

// Scraper pulls frames out of a video and saves face crops.
type Scraper struct {
	detector Detector
	ffmpeg   string // ffmpeg binary, overridable for tests
}

// New creates a scraper using the given detector service.
func New(detector Detector) *Scraper {
	return &Scraper{detector: detector, ffmpeg: "ffmpeg"}
}

// extractFrames shells out to ffmpeg and writes sampled frames into dir.
func (s *Scraper) extractFrames(ctx context.Context, videoPath, dir string, interval float64) ([]string, error) {
	if interval <= 0 {
		interval = 2.0
	}

	pattern := filepath.Join(dir, "frame_%06d.jpg")
	cmd := exec.CommandContext(ctx, s.ffmpeg,
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%g", interval),
		"-q:v", "2",
		pattern,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory: %w", err)
	}

	var frames []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "frame_") && strings.HasSuffix(e.Name(), ".jpg") {
			frames = append(frames, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(frames)
	return frames, nil
}

// keepFace applies the quality filters to one detected face.
func keepFace(face *embedding.Face, minScore float64, minWidth int, stats *Stats) bool {
	if face.DetScore < minScore {
		stats.LowScore++
		return false
	}
	if len(face.BBox) == 4 && int(face.BBox[2]-face.BBox[0]) < minWidth {
		stats.SmallFace++
		return false
	}
	return true
}

// Run scrapes videoPath and writes face crops into outDir.
func (s *Scraper) Run(ctx context.Context, videoPath, outDir string, opts Options) (Stats, error) {
	var stats Stats

	if opts.MinDetScore == 0 {
		opts.MinDetScore = constants.MinDetectionScore
	}
	if opts.MinFaceWidth == 0 {
		opts.MinFaceWidth = constants.MinFaceWidth
	}
	if opts.Prefix == "" {
		base := filepath.Base(videoPath)
		opts.Prefix = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return stats, fmt.Errorf("creating output directory: %w", err)
	}

	frameDir, err := os.MkdirTemp("", "starmatch-frames-*")
	if err != nil {
		return stats, fmt.Errorf("creating frame directory: %w", err)
	}
	defer os.RemoveAll(frameDir)

	frames, err := s.extractFrames(ctx, videoPath, frameDir, opts.FrameInterval)
	if err != nil {
		return stats, err
	}
	if len(frames) == 0 {
		return stats, fmt.Errorf("no frames extracted from %q", videoPath)
	}
	stats.Frames = len(frames)

	for _, framePath := range frames {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		data, err := os.ReadFile(framePath)
		if err != nil {
			stats.FrameFails++
			continue
		}

		resp, err := s.detector.DetectFaces(ctx, data)
		if err != nil {
			log.Printf("detector failed on %s: %v", filepath.Base(framePath), err)
			stats.FrameFails++
			continue
		}

		for i := range resp.Faces {
			face := &resp.Faces[i]
			stats.Faces++
			if !keepFace(face, opts.MinDetScore, opts.MinFaceWidth, &stats) {
				continue
			}

			crop, err := CropFace(data, face.BBox, constants.CropPadding)
			if err != nil {
				log.Printf("cropping face from %s: %v", filepath.Base(framePath), err)
				continue
			}

			name := fmt.Sprintf("%s_%04d.jpg", opts.Prefix, stats.Saved+1)
			if err := os.WriteFile(filepath.Join(outDir, name), crop, 0o644); err != nil {
				return stats, fmt.Errorf("writing crop %s: %w", name, err)
			}
			stats.Saved++
		}
	}

	return stats, nil
}
