// Package gallery implements the embedding gallery: building it from a
// directory of reference images, persisting it, and matching probe images
// against it by Euclidean distance.
package gallery

import (
	"context"
	"errors"

	"github.com/kozaktomas/starmatch/internal/embedding"
)

// Entry is one gallery record: a stable image identifier and the embedding
// computed from the first face found in that image. Immutable once built.
type Entry struct {
	Path      string
	Embedding []float32
}

// Result is the outcome of matching one probe against the gallery.
type Result struct {
	Path       string
	Distance   float64
	Confidence int
}

// Sentinel errors for the distinct user-facing failure modes. The order of
// precondition checks in the engine guarantees a caller can tell them apart.
var (
	ErrArtifactMissing = errors.New("gallery file not found, run 'starmatch gallery build' first")
	ErrArtifactCorrupt = errors.New("gallery file could not be read")
	ErrArtifactEmpty   = errors.New("gallery is empty")
	ErrNoFaceInProbe   = errors.New("could not detect a face in the uploaded image")
)

// Repository persists gallery entries. Saving replaces prior contents
// wholesale; loading returns entries in their stored order, which fixes
// tie-breaking during search.
type Repository interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
	IsEmpty(ctx context.Context) (bool, error)
}

// FaceDetector is the slice of the embedding client the gallery needs.
type FaceDetector interface {
	DetectFaces(ctx context.Context, imageData []byte) (*embedding.FaceResponse, error)
}
