package store

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("key must not be empty")

// KeyValueStore is a durable string store. Values are opaque to the store;
// callers serialize their own state (the cart keeps JSON, the counter a
// decimal number).
type KeyValueStore interface {
	// Get returns ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
