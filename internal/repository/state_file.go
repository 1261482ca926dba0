package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"SectorPulse/internal/domain/repository"
)

// FileStateStore persists run state as a JSON document on local disk.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated state file behind.
type FileStateStore struct {
	path string
}

// NewFileStateStore creates a file-backed state store.
func NewFileStateStore(path string) repository.StateStore {
	return &FileStateStore{path: path}
}

func (s *FileStateStore) Load(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return b, nil
}

func (s *FileStateStore) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
