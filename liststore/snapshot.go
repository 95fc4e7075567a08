package liststore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"cinevault/models"
)

// Snapshot persists the last known list entries so the next session can
// seed genre affinity before the live list loads. It is only ever a seed:
// once a live fetch succeeds the snapshot no longer participates.
type Snapshot struct {
	fs   afero.Fs
	path string
}

// NewSnapshot creates a snapshot stored at path on the given filesystem.
func NewSnapshot(fs afero.Fs, path string) *Snapshot {
	return &Snapshot{fs: fs, path: path}
}

// Load reads the stored entries. A missing file yields an empty list, not an
// error.
func (s *Snapshot) Load() ([]models.ListEntry, error) {
	file, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	var entries []models.ListEntry
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return entries, nil
}

// Save writes the entries, replacing any previous snapshot atomically.
func (s *Snapshot) Save(entries []models.ListEntry) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// Clear removes the snapshot file. Missing files are fine.
func (s *Snapshot) Clear() error {
	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}
