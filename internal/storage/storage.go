// Package storage holds uploaded drawings as opaque blobs. The rest of the
// system only ever sees the returned key; deletion is best-effort from the
// caller's point of view.
package storage

import (
	"context"
	"errors"
)

var (
	ErrInvalidImageData = errors.New("invalid image data")
	ErrBlobNotFound     = errors.New("blob not found")
)

// Store is the narrow image-store contract consumed by the puzzle service.
type Store interface {
	// Put persists data under a fresh opaque key and returns that key.
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	// Delete removes the blob for key. Deleting a missing key is an error
	// so callers can log it, but callers never fail their own operation
	// over it.
	Delete(ctx context.Context, key string) error
}

// Reader is the read-back side, used by the share-card renderer.
type Reader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}
