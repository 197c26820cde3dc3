package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalURLPrefix is the path the server exposes the local store under.
const LocalURLPrefix = "/images"

// A Local stores objects on the filesystem.
type Local struct {
	root   string
	prefix string
}

// NewLocal returns a Local store rooted at the given directory.
func NewLocal(root, prefix string) (*Local, error) {
	if root == "" {
		return nil, errors.New("storage.local.path not found")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "could not create storage directory")
	}
	return &Local{root: root, prefix: strings.TrimSuffix(prefix, "/")}, nil
}

// Root returns the directory holding the objects.
func (s *Local) Root() string {
	return s.root
}

// Put stores the object under the given key and returns its public URL.
func (s *Local) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	filename, err := s.path(key)
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return "", errors.Wrap(err, "could not create object directory")
	}

	tmp := filename + ".tmp"
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return "", errors.Wrap(err, "could not write object")
	}
	if err = os.Rename(tmp, filename); err != nil {
		return "", errors.Wrap(err, "could not move object")
	}

	return s.prefix + "/" + key, nil
}

// Delete removes the object stored under the given key.
func (s *Local) Delete(_ context.Context, key string) error {
	filename, err := s.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(filename)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "could not delete object")
	}
	return nil
}

// Key returns the key of the object served at the given URL.
func (s *Local) Key(url string) string {
	return keyFromURL(s.prefix, url)
}

func (s *Local) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", errors.Errorf("invalid object key: %s", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
