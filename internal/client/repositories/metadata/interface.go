// Package metadata is the client's durable key/value storage. Tokens and
// session bookkeeping live here as flat string keys.
package metadata

import (
	"context"
)

// Repository is a flat key/value store. Get returns (nil, nil) for an
// absent key, and Delete of an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Update runs fn against a view of the store whose writes are applied
	// together if fn returns nil and discarded otherwise.
	Update(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
