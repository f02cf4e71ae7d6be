package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore writes artifacts under a base directory. Keys are sanitized to a
// flat, safe file name so caller-supplied identifiers cannot escape the base
// path.
type FileStore struct {
	basePath string
}

// NewFileStore creates the base directory if needed.
func NewFileStore(basePath string) (*FileStore, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base path: %w", err)
	}
	return &FileStore{basePath: abs}, nil
}

// BasePath returns the absolute base directory.
func (s *FileStore) BasePath() string {
	return s.basePath
}

// Write stores data under the sanitized key and returns the absolute path.
func (s *FileStore) Write(key string, data []byte) (string, error) {
	path := filepath.Join(s.basePath, sanitizeKey(key))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", key, err)
	}
	return path, nil
}

func sanitizeKey(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	cleaned := replacer.Replace(strings.TrimSpace(key))
	if cleaned == "" {
		cleaned = "artifact"
	}
	return cleaned
}
