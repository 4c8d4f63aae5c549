package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore is the durable fallback on the process's own filesystem. Assumed
// always available; a failure here fails the whole request.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Put(_ context.Context, path string, data []byte) (StoredObject, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return StoredObject{}, fmt.Errorf("create fallback directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o640); err != nil {
		return StoredObject{}, fmt.Errorf("write fallback file: %w", err)
	}
	return StoredObject{Path: full}, nil
}
