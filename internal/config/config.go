package config

import (
	"os"
	"strconv"
)

type Config struct {
	Gallery   GalleryConfig
	Embedding EmbeddingConfig
	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Roast     RoastConfig
	Web       WebConfig
}

type GalleryConfig struct {
	Dir          string // directory with reference images (default static/gallery)
	ArtifactPath string // path of the serialized gallery file (default face_gallery.gob)
	LabelsPath   string // optional YAML file mapping image file -> display label
	FacePolicy   string // "first" or "largest" face when an image contains several
}

type EmbeddingConfig struct {
	URL string // embedding server base URL, defaults to http://localhost:8000
	Dim int    // embedding dimensionality, defaults to 128
}

type DatabaseConfig struct {
	URL      string // optional PostgreSQL URL; when set the gallery lives in pgvector instead of the artifact file
	MaxConns int    // maximum pool connections (default 25)
	MinConns int    // idle connections the pool keeps warm (default 5)
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type RoastConfig struct {
	Enabled  bool   // roast mode replaces the confidence score in responses
	Provider string // "openai" (default) or "gemini"
}

type WebConfig struct {
	UseHNSW bool // serve with an in-memory HNSW index instead of the linear scan
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean ("1", "true", "yes").
func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func Load() *Config {
	return &Config{
		Gallery: GalleryConfig{
			Dir:          envString("GALLERY_DIR", "static/gallery"),
			ArtifactPath: envString("GALLERY_FILE", "face_gallery.gob"),
			LabelsPath:   os.Getenv("GALLERY_LABELS"),
			FacePolicy:   envString("FACE_POLICY", "first"),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
			Dim: envInt("EMBEDDING_DIM", 128),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: envInt("DATABASE_MAX_CONNS", 25),
			MinConns: envInt("DATABASE_MIN_CONNS", 5),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Roast: RoastConfig{
			Enabled:  envBool("ROAST_MODE"),
			Provider: envString("ROAST_PROVIDER", "openai"),
		},
		Web: WebConfig{
			UseHNSW: envBool("WEB_USE_HNSW"),
		},
	}
}
