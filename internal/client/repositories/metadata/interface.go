// Package metadata is the client's durable key-value store. It holds the
// session token and UI preferences between runs.
//
// Get returns (nil, nil) for an absent key. Delete of an absent key is a no-op.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all pairs atomically.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
