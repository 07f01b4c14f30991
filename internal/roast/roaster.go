package roast

import (
	"context"
	"log"
	"time"
)

// FallbackMessage is returned whenever the text-generation call cannot be
// made or fails. Callers can rely on always getting some message back.
const FallbackMessage = "You look great today! (Our roast writer is on a coffee break.)"

// requestTimeout bounds a single text-generation call. A timeout counts as a
// failure and yields the fallback message.
const requestTimeout = 10 * time.Second

// Roaster wraps a Provider and absorbs every failure mode behind the
// fallback message: missing credentials, network errors, timeouts, and empty
// completions all degrade to the same constant rather than surfacing to the
// caller.
type Roaster struct {
	provider Provider
	enabled  bool
}

// New creates a roaster. A nil provider (no credential configured) yields a
// disabled roaster that always answers with the fallback message.
func New(provider Provider) *Roaster {
	return &Roaster{
		provider: provider,
		enabled:  provider != nil,
	}
}

// Enabled reports whether a text-generation backend is configured.
func (r *Roaster) Enabled() bool {
	return r.enabled
}

// Roast produces a one-liner for the matched entry. It never returns an
// error; the worst case is the fallback message.
func (r *Roaster) Roast(ctx context.Context, matchLabel string, confidence int) string {
	if !r.enabled {
		return FallbackMessage
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	message, err := r.provider.GenerateRoast(ctx, matchLabel, confidence)
	if err != nil {
		log.Printf("roast generation failed, using fallback: %v", err)
		return FallbackMessage
	}
	return message
}
