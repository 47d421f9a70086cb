package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// The five named documents the store persists. Each key holds one
// self-contained JSON document; every mutating operation writes the full
// collection snapshot back under its key.
const (
	keyUsers       = "users"
	keyCredentials = "credentials"
	keyCurrentUser = "current_user"
	keyReports     = "reports"
	keySummaries   = "ai_summaries"
)

// KV is the minimal key-value medium the local store persists through.
// Implementations are expected to serialize access externally (single
// process); the store adds no locking of its own.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// FileKV stores each key as a JSON file in a single directory.
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

func (f *FileKV) Put(key string, value []byte) error {
	if err := os.WriteFile(f.path(key), value, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Delete(key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
