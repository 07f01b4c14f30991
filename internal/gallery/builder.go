package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kozaktomas/starmatch/internal/embedding"
)

// imageExtensions are the raster formats the builder picks up.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// BuildStats summarizes one builder run.
type BuildStats struct {
	Scanned int // candidate image files found
	Encoded int // entries written
	NoFace  int // images with no detectable face, skipped
	Failed  int // unreadable files or per-image service failures, skipped
}

// Builder scans a directory of reference images and turns each one with a
// detectable face into a gallery entry. Images with no face are skipped
// silently; a single bad file never aborts the run.
type Builder struct {
	detector FaceDetector
	policy   embedding.FacePolicy

	// Progress is called after each image with (processed, total).
	Progress func(processed, total int)
}

// NewBuilder creates a builder using the given detector and face policy.
func NewBuilder(detector FaceDetector, policy embedding.FacePolicy) *Builder {
	return &Builder{detector: detector, policy: policy}
}

// listImageFiles returns the candidate images in dir, sorted by name so
// rebuilds produce the same entry ordering.
func listImageFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("gallery directory %q not found", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading gallery directory: %w", err)
	}

	var files []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(de.Name()))] {
			files = append(files, filepath.Join(dir, de.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// encodeImage computes the embedding for the selected face in one image.
// Returns nil when the image holds no detectable face.
func (b *Builder) encodeImage(ctx context.Context, path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	resp, err := b.detector.DetectFaces(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("detecting faces in %s: %w", path, err)
	}

	face := embedding.SelectFace(resp.Faces, b.policy)
	if face == nil {
		return nil, nil
	}
	return face.Embedding, nil
}

// Build scans dir and returns one entry per image with a detectable face.
// It fails when the directory is missing, holds no candidate images, or no
// image yields a face; per-image failures only bump the stats counters.
func (b *Builder) Build(ctx context.Context, dir string) ([]Entry, BuildStats, error) {
	var stats BuildStats

	files, err := listImageFiles(dir)
	if err != nil {
		return nil, stats, err
	}
	if len(files) == 0 {
		return nil, stats, fmt.Errorf("no images found in %q", dir)
	}
	stats.Scanned = len(files)

	var entries []Entry
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		emb, err := b.encodeImage(ctx, path)
		switch {
		case err != nil:
			stats.Failed++
		case emb == nil:
			stats.NoFace++
		default:
			entries = append(entries, Entry{Path: path, Embedding: emb})
			stats.Encoded++
		}

		if b.Progress != nil {
			b.Progress(i+1, len(files))
		}
	}

	if len(entries) == 0 {
		return nil, stats, fmt.Errorf("no faces found in any image under %q", dir)
	}
	return entries, stats, nil
}

// BuildAndSave runs Build and persists the result. Nothing is written when
// the build fails, so a broken run never clobbers an existing artifact.
func (b *Builder) BuildAndSave(ctx context.Context, dir string, repo Repository) (BuildStats, error) {
	entries, stats, err := b.Build(ctx, dir)
	if err != nil {
		return stats, err
	}
	if err := repo.Save(ctx, entries); err != nil {
		return stats, fmt.Errorf("saving gallery: %w", err)
	}
	return stats, nil
}
