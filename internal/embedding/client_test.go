package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected 'file' form field: %v", err)
		}

		json.NewEncoder(w).Encode(FaceResponse{
			FacesCount: 1,
			Faces: []Face{
				{FaceIndex: 0, Dim: 3, Embedding: []float32{0.1, 0.2, 0.3}, BBox: []float64{10, 10, 50, 60}, DetScore: 0.99},
			},
			Model: "face_recognition",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	resp, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}

	if resp.FacesCount != 1 {
		t.Errorf("expected 1 face, got %d", resp.FacesCount)
	}
	if len(resp.Faces[0].Embedding) != 3 {
		t.Errorf("expected 3-dim embedding, got %d", len(resp.Faces[0].Embedding))
	}
}

func TestDetectFaces_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err == nil {
		t.Error("expected error for server failure")
	}
}

func TestDetectFaces_NoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(FaceResponse{FacesCount: 0, Faces: nil})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	resp, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}
	if resp.FacesCount != 0 || len(resp.Faces) != 0 {
		t.Error("expected zero faces")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"gif", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0, 0}, "image/gif"},
		{"too short", []byte{0xFF}, "application/octet-stream"},
		{"unknown", []byte{1, 2, 3, 4, 5, 6, 7, 8}, "application/octet-stream"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectMIMEType(tc.data); got != tc.want {
				t.Errorf("detectMIMEType = %s, expected %s", got, tc.want)
			}
		})
	}
}

func TestSelectFace_FirstDetected(t *testing.T) {
	faces := []Face{
		{FaceIndex: 0, BBox: []float64{0, 0, 10, 10}},
		{FaceIndex: 1, BBox: []float64{0, 0, 100, 100}},
	}

	got := SelectFace(faces, PolicyFirstDetected)
	if got == nil || got.FaceIndex != 0 {
		t.Errorf("expected first face, got %+v", got)
	}
}

func TestSelectFace_LargestArea(t *testing.T) {
	faces := []Face{
		{FaceIndex: 0, BBox: []float64{0, 0, 10, 10}},
		{FaceIndex: 1, BBox: []float64{0, 0, 100, 100}},
		{FaceIndex: 2, BBox: []float64{0, 0, 50, 50}},
	}

	got := SelectFace(faces, PolicyLargestArea)
	if got == nil || got.FaceIndex != 1 {
		t.Errorf("expected largest face, got %+v", got)
	}
}

func TestSelectFace_Empty(t *testing.T) {
	if got := SelectFace(nil, PolicyFirstDetected); got != nil {
		t.Errorf("expected nil for no faces, got %+v", got)
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("largest") != PolicyLargestArea {
		t.Error("expected largest policy")
	}
	if ParsePolicy("first") != PolicyFirstDetected {
		t.Error("expected first policy")
	}
	if ParsePolicy("") != PolicyFirstDetected {
		t.Error("expected default policy for empty string")
	}
}
