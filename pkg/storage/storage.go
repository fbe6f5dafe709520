package storage

import (
	"context"
)

// Store is the save-slot contract the game persists through. Values are
// opaque strings; a missing key is reported as ("", false, nil).
type Store interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
