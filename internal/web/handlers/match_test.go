package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kozaktomas/starmatch/internal/constants"
	"github.com/kozaktomas/starmatch/internal/gallery"
)

// fakeMatcher returns a canned result or error.
type fakeMatcher struct {
	result *gallery.Result
	err    error
	calls  int
}

func (f *fakeMatcher) Match(ctx context.Context, imageData []byte) (*gallery.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeCommentator returns a fixed roast line.
type fakeCommentator struct {
	message string
}

func (f *fakeCommentator) Roast(ctx context.Context, matchLabel string, confidence int) string {
	return f.message
}

// multipartRequest builds a POST /find-match request carrying one file part.
func multipartRequest(t *testing.T, fieldName, fileName string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/find-match", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func emptyLabels(t *testing.T) *gallery.Labels {
	t.Helper()
	labels, err := gallery.LoadLabels("")
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}
	return labels
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestFindMatch_Success(t *testing.T) {
	matcher := &fakeMatcher{result: &gallery.Result{
		Path:       "static/gallery/hero.jpg",
		Distance:   0.4,
		Confidence: 75,
	}}
	handler := NewMatchHandler(matcher, nil, emptyLabels(t), "static/gallery", false)

	w := httptest.NewRecorder()
	handler.FindMatch(w, multipartRequest(t, "file", "selfie.jpg", []byte("image bytes")))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp["success"] != true {
		t.Error("expected success=true")
	}
	if resp["matched_image_url"] != "/gallery/hero.jpg" {
		t.Errorf("matched_image_url = %v", resp["matched_image_url"])
	}
	if resp["confidence"] != float64(75) {
		t.Errorf("confidence = %v", resp["confidence"])
	}
	if _, ok := resp["roast_message"]; ok {
		t.Error("roast_message must be absent in confidence mode")
	}
}

func TestFindMatch_RoastMode(t *testing.T) {
	matcher := &fakeMatcher{result: &gallery.Result{
		Path:       "static/gallery/hero.jpg",
		Confidence: 88,
	}}
	commenter := &fakeCommentator{message: "Almost a hero. Almost."}
	handler := NewMatchHandler(matcher, commenter, emptyLabels(t), "static/gallery", true)

	w := httptest.NewRecorder()
	handler.FindMatch(w, multipartRequest(t, "file", "selfie.jpg", []byte("image bytes")))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp["roast_message"] != "Almost a hero. Almost." {
		t.Errorf("roast_message = %v", resp["roast_message"])
	}
	if _, ok := resp["confidence"]; ok {
		t.Error("confidence must be absent in roast mode")
	}
}

func TestFindMatch_MissingFilePart(t *testing.T) {
	handler := NewMatchHandler(&fakeMatcher{}, nil, emptyLabels(t), "static/gallery", false)

	w := httptest.NewRecorder()
	handler.FindMatch(w, multipartRequest(t, "not_file", "selfie.jpg", []byte("image")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp["success"] != false {
		t.Error("expected success=false")
	}
	if resp["error"] != "No file part" {
		t.Errorf("error = %v", resp["error"])
	}
}

func TestFindMatch_RejectsOversizedUpload(t *testing.T) {
	matcher := &fakeMatcher{result: &gallery.Result{Path: "static/gallery/hero.jpg", Confidence: 75}}
	handler := NewMatchHandler(matcher, nil, emptyLabels(t), "static/gallery", false)

	oversized := bytes.Repeat([]byte("a"), constants.MaxUploadSize+1)
	w := httptest.NewRecorder()
	handler.FindMatch(w, multipartRequest(t, "file", "selfie.jpg", oversized))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp["success"] != false {
		t.Error("expected success=false")
	}
	if matcher.calls != 0 {
		t.Errorf("matcher ran %d times on a rejected upload", matcher.calls)
	}
}

func TestFindMatch_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"artifact missing", gallery.ErrArtifactMissing, http.StatusInternalServerError},
		{"artifact corrupt", gallery.ErrArtifactCorrupt, http.StatusInternalServerError},
		{"artifact empty", gallery.ErrArtifactEmpty, http.StatusInternalServerError},
		{"no face in probe", gallery.ErrNoFaceInProbe, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewMatchHandler(&fakeMatcher{err: tc.err}, nil, emptyLabels(t), "static/gallery", false)

			w := httptest.NewRecorder()
			handler.FindMatch(w, multipartRequest(t, "file", "selfie.jpg", []byte("image")))

			if w.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, w.Code)
			}
			resp := decodeResponse(t, w)
			if resp["success"] != false {
				t.Error("expected success=false")
			}
			if resp["error"] == "" {
				t.Error("expected a human-readable error message")
			}
		})
	}
}

func TestFindMatch_StagedUploadRemoved(t *testing.T) {
	uploadDir := t.TempDir()

	run := func(t *testing.T, matcher Matcher) {
		handler := NewMatchHandler(matcher, nil, emptyLabels(t), "static/gallery", false)
		handler.uploadDir = uploadDir

		w := httptest.NewRecorder()
		handler.FindMatch(w, multipartRequest(t, "file", "selfie.jpg", []byte("image")))

		entries, err := os.ReadDir(uploadDir)
		if err != nil {
			t.Fatalf("reading upload dir: %v", err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "starmatch-upload-") {
				t.Errorf("staged upload left behind: %s", filepath.Join(uploadDir, e.Name()))
			}
		}
	}

	t.Run("success path", func(t *testing.T) {
		run(t, &fakeMatcher{result: &gallery.Result{Path: "static/gallery/a.jpg", Confidence: 10}})
	})
	t.Run("error path", func(t *testing.T) {
		run(t, &fakeMatcher{err: gallery.ErrNoFaceInProbe})
	})
	t.Run("internal error path", func(t *testing.T) {
		run(t, &fakeMatcher{err: errors.New("detector unreachable")})
	})
}

func TestFindMatch_LabelFeedsRoast(t *testing.T) {
	matcher := &fakeMatcher{result: &gallery.Result{
		Path:       "static/gallery/some_actor.jpg",
		Confidence: 50,
	}}

	var gotLabel string
	commenter := commentatorFunc(func(ctx context.Context, matchLabel string, confidence int) string {
		gotLabel = matchLabel
		return "ok"
	})
	handler := NewMatchHandler(matcher, commenter, emptyLabels(t), "static/gallery", true)

	w := httptest.NewRecorder()
	handler.FindMatch(w, multipartRequest(t, "file", "selfie.jpg", []byte("image")))

	if gotLabel != "Some Actor" {
		t.Errorf("roast received label %q, expected fallback-derived %q", gotLabel, "Some Actor")
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		name       string
		galleryDir string
		entryPath  string
		want       string
	}{
		{"relative gallery dir", "static/gallery", "static/gallery/hero.jpg", "/gallery/hero.jpg"},
		{"absolute gallery dir", "/data/faces", "/data/faces/hero.jpg", "/gallery/hero.jpg"},
		{"nested entry", "/data/faces", "/data/faces/bollywood/hero.jpg", "/gallery/bollywood/hero.jpg"},
		{"entry outside gallery dir", "/data/faces", "static/extra/hero.jpg", "/static/extra/hero.jpg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewMatchHandler(&fakeMatcher{}, nil, emptyLabels(t), tc.galleryDir, false)
			if got := handler.imageURL(tc.entryPath); got != tc.want {
				t.Errorf("imageURL(%q) = %q, expected %q", tc.entryPath, got, tc.want)
			}
		})
	}
}

// commentatorFunc adapts a function to the Commentator interface.
type commentatorFunc func(ctx context.Context, matchLabel string, confidence int) string

func (f commentatorFunc) Roast(ctx context.Context, matchLabel string, confidence int) string {
	return f(ctx, matchLabel, confidence)
}

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	HealthCheck(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}
