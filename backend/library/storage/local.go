package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage stores objects as files under a root folder. Paths it hands
// out are absolute file paths.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve folder path %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create folder path %s: %w", abs, err)
	}
	return &LocalStorage{root: abs}, nil
}

func (s *LocalStorage) NewPath() string {
	return filepath.Join(s.root, uuid.NewString())
}

// contains rejects paths escaping the root folder.
func (s *LocalStorage) contains(path string) bool {
	clean := filepath.Clean(path)
	return strings.HasPrefix(clean, s.root+string(filepath.Separator))
}

// Write replaces the file at path atomically so a redelivered job never
// leaves a half-written thumbnail behind.
func (s *LocalStorage) Write(ctx context.Context, path string, data []byte) error {
	if !s.contains(path) {
		return fmt.Errorf("path %s is outside %s", path, s.root)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func (s *LocalStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if !s.contains(path) {
		return nil, ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if !s.contains(path) {
		return fmt.Errorf("path %s is outside %s", path, s.root)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
