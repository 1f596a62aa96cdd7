package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrObjectNotFound = errors.New("stored object not found")
	ErrInvalidKey     = errors.New("invalid storage key")
)

// Object describes a stored document. Key is relative to the storage root
// and uses forward slashes.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// FileStorage keeps generated documents such as payslip PDFs.
type FileStorage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (Object, error)
	Remove(ctx context.Context, key string) error
	URL(key string) (string, error)
}
