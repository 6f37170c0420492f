package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type LocalStore struct {
	dir     string
	baseURL string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload directory %s", dir)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

// Dir is where files are written.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", errors.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *LocalStore) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(path)
		return "", errors.Wrap(err, "closing file")
	}
	return joinURL(s.baseURL, name), nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
