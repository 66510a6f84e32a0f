// Package kvstore provides the blob storage behind the family token
// collection and the demo session keys. Values are JSON-serialized strings
// written whole; callers layer their own versioning on top.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound indicates the key has no stored value
var ErrNotFound = errors.New("key not found")

// Store is an injected key-value interface so the token and demo-session
// blobs can move between backends without touching business logic.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
