package gallery

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// fileFormatVersion guards against decoding artifacts written by an
// incompatible build.
const fileFormatVersion = 1

// fileArtifact is the on-disk shape of the gallery.
type fileArtifact struct {
	Version int
	SavedAt time.Time
	Entries []Entry
}

// FileStore persists the gallery as a single gob-encoded file. A save writes
// a temp file in the same directory and renames it over the target, so a
// rebuild either fully replaces the artifact or leaves the old one intact.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given artifact path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the artifact location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads all entries. A missing file yields ErrArtifactMissing; a file
// that exists but cannot be decoded yields ErrArtifactCorrupt.
func (s *FileStore) Load(ctx context.Context) ([]Entry, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, ErrArtifactMissing
	}
	if err != nil {
		return nil, fmt.Errorf("opening gallery file: %w", err)
	}
	defer f.Close()

	var artifact fileArtifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if artifact.Version != fileFormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrArtifactCorrupt, artifact.Version)
	}

	return artifact.Entries, nil
}

// Save replaces the artifact with the given entries.
func (s *FileStore) Save(ctx context.Context, entries []Entry) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp gallery file: %w", err)
	}
	tmpName := tmp.Name()

	artifact := fileArtifact{
		Version: fileFormatVersion,
		SavedAt: time.Now(),
		Entries: entries,
	}

	if err := gob.NewEncoder(tmp).Encode(&artifact); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encoding gallery: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp gallery file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing gallery file: %w", err)
	}
	return nil
}

// IsEmpty reports whether the artifact holds no entries.
func (s *FileStore) IsEmpty(ctx context.Context) (bool, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
