// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Upload constants
const (
	// MaxUploadSize is the maximum accepted selfie upload size in bytes
	MaxUploadSize = 10 << 20 // 10 MB
)

// Gallery constants
const (
	// DefaultEmbeddingDim is the embedding vector length produced by the
	// default face_recognition model
	DefaultEmbeddingDim = 128
)

// Scrape constants
const (
	// MinDetectionScore is the minimum detector confidence for a scraped
	// face crop to be kept
	MinDetectionScore = 0.98

	// MinFaceWidth is the minimum face bounding-box width in pixels for a
	// scraped crop; smaller faces are too blurry to be useful references
	MinFaceWidth = 60

	// CropPadding is the fraction of the bounding box added on each side
	// when cropping a face out of a frame
	CropPadding = 0.35

	// JPEGQuality is the encoder quality for saved face crops
	JPEGQuality = 95
)
