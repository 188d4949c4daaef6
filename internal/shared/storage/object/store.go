package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("object not found")

// ObjectStore archives uploaded source files.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
