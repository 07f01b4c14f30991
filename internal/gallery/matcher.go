package gallery

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/kozaktomas/starmatch/internal/embedding"
)

// EuclideanDistance computes the L2 distance between two embedding vectors.
// Lower distance means more similar faces.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Confidence maps a distance onto the 0-99 display scale:
//
//	clamp(0, 99, floor(max(0, (1 - d - 0.1) * 150)))
//
// The constants are calibration tuned to the embedding model's typical
// distance range and are part of the user-visible contract; do not adjust.
func Confidence(distance float64) int {
	c := (1.0 - distance - 0.1) * 150.0
	if c < 0 {
		return 0
	}
	n := int(c)
	if n > 99 {
		return 99
	}
	return n
}

// Index answers nearest-neighbor queries over the gallery.
type Index interface {
	// Nearest returns the closest entry and its distance to the probe.
	// A non-empty gallery always yields a match, however distant.
	Nearest(ctx context.Context, probe []float32) (*Entry, float64, error)
}

// LinearIndex is the reference search: scan every entry, keep the minimum.
// Ties break toward the earlier entry, so results are deterministic for a
// fixed gallery ordering. Fine for galleries of tens to low hundreds of
// entries; anything bigger wants the HNSW index.
type LinearIndex struct {
	entries []Entry
}

// NewLinearIndex builds a linear index over the given entries.
func NewLinearIndex(entries []Entry) *LinearIndex {
	return &LinearIndex{entries: entries}
}

// Nearest scans all entries for the minimum Euclidean distance.
func (idx *LinearIndex) Nearest(ctx context.Context, probe []float32) (*Entry, float64, error) {
	if len(idx.entries) == 0 {
		return nil, 0, ErrArtifactEmpty
	}

	best := 0
	bestDist := EuclideanDistance(probe, idx.entries[0].Embedding)
	for i := 1; i < len(idx.entries); i++ {
		if d := EuclideanDistance(probe, idx.entries[i].Embedding); d < bestDist {
			best = i
			bestDist = d
		}
	}

	return &idx.entries[best], bestDist, nil
}

// Engine runs the full match pipeline: load gallery, embed probe, search.
type Engine struct {
	repo     Repository
	detector FaceDetector
	policy   embedding.FacePolicy
	index    Index // optional prebuilt index; when nil the gallery is loaded per query
}

// NewEngine creates a match engine that loads the gallery from repo on every
// query and scans it linearly.
func NewEngine(repo Repository, detector FaceDetector, policy embedding.FacePolicy) *Engine {
	return &Engine{repo: repo, detector: detector, policy: policy}
}

// NewEngineWithIndex creates a match engine backed by a prebuilt index,
// skipping the per-query artifact load.
func NewEngineWithIndex(index Index, detector FaceDetector, policy embedding.FacePolicy) *Engine {
	return &Engine{index: index, detector: detector, policy: policy}
}

// embedProbe detects faces in the probe image and returns the embedding of
// the face selected by the configured policy.
func (e *Engine) embedProbe(ctx context.Context, imageData []byte) ([]float32, error) {
	resp, err := e.detector.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("probe face detection: %w", err)
	}

	face := embedding.SelectFace(resp.Faces, e.policy)
	if face == nil {
		return nil, ErrNoFaceInProbe
	}
	return face.Embedding, nil
}

// Match finds the gallery entry closest to the face in the probe image.
// Preconditions are checked in a fixed order so each failure mode surfaces
// as its own error: artifact missing, artifact corrupt, gallery empty,
// no face in probe.
func (e *Engine) Match(ctx context.Context, imageData []byte) (*Result, error) {
	index := e.index
	if index == nil {
		entries, err := e.repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, ErrArtifactEmpty
		}
		index = NewLinearIndex(entries)
	}

	probe, err := e.embedProbe(ctx, imageData)
	if err != nil {
		return nil, err
	}

	entry, distance, err := index.Nearest(ctx, probe)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		// Index implementations return ErrArtifactEmpty instead, but don't
		// let a misbehaving one produce a nil dereference.
		return nil, errors.New("search returned no match")
	}

	return &Result{
		Path:       entry.Path,
		Distance:   distance,
		Confidence: Confidence(distance),
	}, nil
}
