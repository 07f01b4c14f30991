package scrape

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/kozaktomas/starmatch/internal/constants"
	"github.com/kozaktomas/starmatch/internal/embedding"
)

// Detector is the slice of the embedding service the scraper needs.
type Detector interface {
	DetectFaces(ctx context.Context, imageData []byte) (*embedding.FaceResponse, error)
}

// paddedBox grows a bounding box by padding on each side, clamped to the
// image bounds. The box comes from the detector as [x1, y1, x2, y2].
func paddedBox(bbox []float64, padding float64, bounds image.Rectangle) (image.Rectangle, error) {
	if len(bbox) != 4 {
		return image.Rectangle{}, fmt.Errorf("expected 4 bbox coordinates, got %d", len(bbox))
	}

	w := bbox[2] - bbox[0]
	h := bbox[3] - bbox[1]
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("degenerate bounding box %v", bbox)
	}

	rect := image.Rect(
		int(bbox[0]-w*padding),
		int(bbox[1]-h*padding),
		int(bbox[2]+w*padding),
		int(bbox[3]+h*padding),
	).Intersect(bounds)

	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("bounding box %v outside image bounds %v", bbox, bounds)
	}
	return rect, nil
}

// CropFace cuts the padded face region out of a frame and re-encodes it as
// JPEG at gallery quality.
func CropFace(frameData []byte, bbox []float64, padding float64) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(frameData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	rect, err := paddedBox(bbox, padding, img.Bounds())
	if err != nil {
		return nil, err
	}

	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(crop, crop.Bounds(), img, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, crop, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
