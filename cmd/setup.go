package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/starmatch/internal/config"
	"github.com/kozaktomas/starmatch/internal/embedding"
	"github.com/kozaktomas/starmatch/internal/gallery"
	"github.com/kozaktomas/starmatch/internal/roast"
)

// newDetector creates the embedding service client from configuration.
func newDetector(cfg *config.Config) *embedding.Client {
	return embedding.NewClient(cfg.Embedding.URL, "")
}

// newRepository picks the gallery backend: PostgreSQL with pgvector when
// DATABASE_URL is set, the artifact file otherwise. The returned cleanup
// releases the database pool and is a no-op for the file store.
func newRepository(ctx context.Context, cfg *config.Config) (gallery.Repository, func(), error) {
	if cfg.Database.URL != "" {
		store, err := gallery.NewPostgresStore(ctx, cfg.Database.URL, cfg.Embedding.Dim,
			cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to gallery database: %w", err)
		}
		fmt.Println("Using PostgreSQL gallery backend")
		return store, store.Close, nil
	}
	return gallery.NewFileStore(cfg.Gallery.ArtifactPath), func() {}, nil
}

// newRoaster builds the roast generator. Missing credentials disable the
// feature instead of failing: the roaster then always answers with its
// fallback message.
func newRoaster(ctx context.Context, cfg *config.Config) *roast.Roaster {
	if !cfg.Roast.Enabled {
		return roast.New(nil)
	}

	var provider roast.Provider
	switch cfg.Roast.Provider {
	case "gemini":
		if cfg.Gemini.APIKey != "" {
			p, err := roast.NewGeminiProvider(ctx, cfg.Gemini.APIKey)
			if err != nil {
				fmt.Printf("Warning: Gemini client unavailable, roasts fall back to the canned line: %v\n", err)
			} else {
				provider = p
			}
		}
	default:
		if cfg.OpenAI.Token != "" {
			provider = roast.NewOpenAIProvider(cfg.OpenAI.Token)
		}
	}

	if provider == nil {
		fmt.Println("Roast mode enabled without a usable text-generation credential; using the fallback message")
	}
	return roast.New(provider)
}
