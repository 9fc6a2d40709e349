package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Local struct {
	Dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Local{Dir: dir}, nil
}

func (l *Local) Save(_ context.Context, name string, body io.ReadSeeker, _ string) (string, error) {
	path := filepath.Join(l.Dir, filepath.Base(name))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return filepath.ToSlash(path), nil
}

// Remove deletes a file previously returned by Save. Paths outside Dir are
// refused.
func (l *Local) Remove(_ context.Context, path string) error {
	clean := filepath.Clean(filepath.FromSlash(path))
	dir := filepath.Clean(l.Dir)
	if filepath.Dir(clean) != dir {
		return fmt.Errorf("refusing to remove %s outside %s", path, l.Dir)
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
