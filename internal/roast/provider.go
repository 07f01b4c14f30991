package roast

import "context"

// Provider defines the interface for text-generation backends that produce
// the one-liner shown next to a match result.
type Provider interface {
	Name() string
	// GenerateRoast turns a short display label (who or what the probe
	// matched) into a playful one-liner.
	GenerateRoast(ctx context.Context, matchLabel string, confidence int) (string, error)
}
