package gallery

import (
	"context"
	"sync"

	"github.com/coder/hnsw"
)

// hnswMaxNeighbors is the M parameter of the HNSW graph.
const hnswMaxNeighbors = 16

// HNSWIndex is an approximate nearest-neighbor index over the gallery for
// deployments where the linear scan gets too slow. It trades the linear
// scan's exactness (and its first-minimum tie-break) for sublinear search,
// so it is opt-in. The gallery is read-only once built, so concurrent
// queries only take the read lock.
type HNSWIndex struct {
	graph   *hnsw.Graph[int]
	entries []Entry
	mu      sync.RWMutex
}

// NewHNSWIndex builds the index from gallery entries.
func NewHNSWIndex(entries []Entry) *HNSWIndex {
	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	for i := range entries {
		if len(entries[i].Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(i, entries[i].Embedding))
	}

	return &HNSWIndex{graph: g, entries: entries}
}

// Count returns the number of indexed entries.
func (h *HNSWIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Nearest returns the closest gallery entry to the probe embedding.
// The distance is recomputed exactly so confidence scores stay identical to
// the linear scan's for the same winning entry.
func (h *HNSWIndex) Nearest(ctx context.Context, probe []float32) (*Entry, float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return nil, 0, ErrArtifactEmpty
	}

	neighbors := h.graph.Search(probe, 1)
	if len(neighbors) == 0 {
		return nil, 0, ErrArtifactEmpty
	}

	entry := &h.entries[neighbors[0].Key]
	return entry, EuclideanDistance(probe, entry.Embedding), nil
}
