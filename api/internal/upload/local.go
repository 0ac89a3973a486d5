package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore writes uploads under a directory. Every Put gets its own
// <uuid>-<name> file, so uploads sharing a filename never see each other's bytes.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(_ context.Context, name string, data []byte) (string, error) {
	p := filepath.Join(s.dir, uuid.NewString()+"-"+SanitizeFilename(name))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", p, err)
	}
	return p, nil
}

func (s *LocalStore) Get(_ context.Context, location string) ([]byte, error) {
	if filepath.Dir(location) != filepath.Clean(s.dir) {
		return nil, fmt.Errorf("location %q is outside the upload dir", location)
	}
	b, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", location, err)
	}
	return b, nil
}
