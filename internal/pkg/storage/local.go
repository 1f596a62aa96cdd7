package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage keeps objects as files below root and serves them under
// publicURL, e.g. "http://localhost:8080/files".
type LocalStorage struct {
	root      string
	publicURL string
}

func NewLocalStorage(root, publicURL string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: abs, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// normalizeKey cleans key into a slash separated path that cannot leave the root.
func normalizeKey(key string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(key)), "/")
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}

func (s *LocalStorage) file(key string) (string, string, error) {
	clean, err := normalizeKey(key)
	if err != nil {
		return "", "", err
	}
	return clean, filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Put writes body to a temporary file next to the target and renames it into
// place, so readers never see a partial document.
func (s *LocalStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) (Object, error) {
	clean, target, err := s.file(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Object{}, fmt.Errorf("failed to create directory for %s: %w", clean, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("failed to create temp file for %s: %w", clean, err)
	}
	size, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("failed to write %s: %w", clean, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("failed to move %s into place: %w", clean, err)
	}

	return Object{Key: clean, Size: size, ContentType: contentType}, nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	clean, target, err := s.file(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", clean, err)
	}
	return f, nil
}

// Stat reports the object's size. The content type is derived from the key's
// extension since local files carry no metadata.
func (s *LocalStorage) Stat(ctx context.Context, key string) (Object, error) {
	clean, target, err := s.file(key)
	if err != nil {
		return Object{}, err
	}
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return Object{}, fmt.Errorf("%w: %s", ErrObjectNotFound, clean)
	}
	if err != nil {
		return Object{}, fmt.Errorf("failed to stat %s: %w", clean, err)
	}
	return Object{Key: clean, Size: info.Size(), ContentType: mime.TypeByExtension(path.Ext(clean))}, nil
}

// Remove deletes the object. Removing a missing object is not an error.
func (s *LocalStorage) Remove(ctx context.Context, key string) error {
	clean, target, err := s.file(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", clean, err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) (string, error) {
	clean, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	return s.publicURL + "/" + clean, nil
}
