package roast

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeProvider returns a canned response or error.
type fakeProvider struct {
	response string
	err      error
	delay    time.Duration
	called   bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateRoast(ctx context.Context, matchLabel string, confidence int) (string, error) {
	f.called = true
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestRoaster_Success(t *testing.T) {
	provider := &fakeProvider{response: "Nice try, celebrity twin."}
	roaster := New(provider)

	if !roaster.Enabled() {
		t.Error("expected roaster with a provider to be enabled")
	}
	got := roaster.Roast(context.Background(), "The Hero", 87)
	if got != "Nice try, celebrity twin." {
		t.Errorf("Roast = %q", got)
	}
}

func TestRoaster_ProviderFailureFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.New("api quota exceeded")}
	roaster := New(provider)

	got := roaster.Roast(context.Background(), "The Hero", 87)
	if got != FallbackMessage {
		t.Errorf("expected fallback message, got %q", got)
	}
}

func TestRoaster_NilProviderDisabled(t *testing.T) {
	roaster := New(nil)

	if roaster.Enabled() {
		t.Error("expected roaster without a provider to be disabled")
	}
	got := roaster.Roast(context.Background(), "The Hero", 87)
	if got != FallbackMessage {
		t.Errorf("expected fallback message, got %q", got)
	}
}

func TestRoaster_CancelledContextFallsBack(t *testing.T) {
	provider := &fakeProvider{response: "too late", delay: time.Second}
	roaster := New(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := roaster.Roast(ctx, "The Hero", 10)
	if got != FallbackMessage {
		t.Errorf("expected fallback on cancelled context, got %q", got)
	}
	if !provider.called {
		t.Error("provider should still have been invoked")
	}
}

func TestBuildUserMessage(t *testing.T) {
	msg := buildUserMessage("Mohanlal in Drishyam", 75)
	if !strings.Contains(msg, "Mohanlal in Drishyam") || !strings.Contains(msg, "75") {
		t.Errorf("unexpected user message: %q", msg)
	}
}
