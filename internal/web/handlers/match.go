package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kozaktomas/starmatch/internal/constants"
	"github.com/kozaktomas/starmatch/internal/gallery"
)

// Matcher runs the probe-to-gallery match pipeline.
type Matcher interface {
	Match(ctx context.Context, imageData []byte) (*gallery.Result, error)
}

// Commentator produces the roast one-liner for a match.
type Commentator interface {
	Roast(ctx context.Context, matchLabel string, confidence int) string
}

// MatchHandler handles the selfie upload endpoint.
type MatchHandler struct {
	matcher    Matcher
	commenter  Commentator
	labels     *gallery.Labels
	galleryDir string
	roastMode  bool
	uploadDir  string
}

// NewMatchHandler creates a match handler. galleryDir is the directory the
// gallery was built from; matched image URLs are derived relative to it.
// When roastMode is set the response carries a roast message instead of the
// numeric confidence.
func NewMatchHandler(matcher Matcher, commenter Commentator, labels *gallery.Labels, galleryDir string, roastMode bool) *MatchHandler {
	return &MatchHandler{
		matcher:    matcher,
		commenter:  commenter,
		labels:     labels,
		galleryDir: galleryDir,
		roastMode:  roastMode,
		uploadDir:  os.TempDir(),
	}
}

// matchResponse is the JSON body for POST /find-match.
type matchResponse struct {
	Success         bool   `json:"success"`
	MatchedImageURL string `json:"matched_image_url,omitempty"`
	Confidence      *int   `json:"confidence,omitempty"`
	RoastMessage    string `json:"roast_message,omitempty"`
	Error           string `json:"error,omitempty"`
}

// stageUpload writes the uploaded file to a uniquely named temp file and
// returns its path. The caller must remove the file on every exit path.
func (h *MatchHandler) stageUpload(file io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	stagedPath := filepath.Join(h.uploadDir, "starmatch-upload-"+uuid.NewString()+ext)

	out, err := os.Create(stagedPath)
	if err != nil {
		return "", fmt.Errorf("creating staged upload file: %w", err)
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(stagedPath)
		return "", fmt.Errorf("saving upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(stagedPath)
		return "", fmt.Errorf("closing staged upload file: %w", err)
	}
	return stagedPath, nil
}

// matchStatus maps pipeline errors onto HTTP status codes. Artifact problems
// are server-side faults; a faceless probe is the client's input problem.
func matchStatus(err error) int {
	if errors.Is(err, gallery.ErrNoFaceInProbe) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// imageURL turns a stored gallery path into the URL the frontend loads.
// Entries under the configured gallery directory map onto the /gallery/ file
// server, so the gallery can live anywhere on disk, absolute paths included.
func (h *MatchHandler) imageURL(entryPath string) string {
	rel, err := filepath.Rel(h.galleryDir, entryPath)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "/gallery/" + filepath.ToSlash(rel)
	}
	// Entry lives outside the gallery dir, assume it is already relative to
	// the working directory like the bundled static assets.
	return "/" + filepath.ToSlash(entryPath)
}

// FindMatch handles POST /find-match: accept a multipart selfie, match it
// against the gallery, answer with the best match. The staged upload is
// removed on every outcome.
func (h *MatchHandler) FindMatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "uploaded file too large")
			return
		}
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, "No file selected")
		return
	}

	stagedPath, err := h.stageUpload(file, header.Filename)
	if err != nil {
		log.Printf("staging upload failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}
	defer os.Remove(stagedPath)

	imageData, err := os.ReadFile(stagedPath)
	if err != nil {
		log.Printf("reading staged upload failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return
	}

	result, err := h.matcher.Match(r.Context(), imageData)
	if err != nil {
		log.Printf("match failed for upload %s: %v", sanitizeForLog(header.Filename), err)
		respondError(w, matchStatus(err), err.Error())
		return
	}

	resp := matchResponse{
		Success:         true,
		MatchedImageURL: h.imageURL(result.Path),
	}
	if h.roastMode && h.commenter != nil {
		label := h.labels.For(result.Path)
		resp.RoastMessage = h.commenter.Roast(r.Context(), label, result.Confidence)
	} else {
		confidence := result.Confidence
		resp.Confidence = &confidence
	}

	respondJSON(w, http.StatusOK, resp)
}
