package storage

import (
	"context"
	"io"
)

// Store is the narrow content-store contract the uploader needs: write the
// bytes for a key, then resolve a publicly dereferenceable URL for it.
type Store interface {
	// Write stores the content read from r under the given key.
	Write(ctx context.Context, key string, r io.Reader) error

	// ResolveURL returns the public retrieval address for a stored key.
	ResolveURL(key string) (string, error)
}
