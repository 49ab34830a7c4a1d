package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotExist is returned when a named document is not in the store
var ErrNotExist = errors.New("document does not exist")

// DocumentStore holds rendered documents by name
type DocumentStore interface {
	Save(ctx context.Context, name string, body io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	// RemoveOlderThan deletes documents last modified before cutoff and reports how many were removed
	RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
