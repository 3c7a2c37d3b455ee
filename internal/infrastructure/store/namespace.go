package store

import "context"

// Namespace prefixes every key so several sessions can share one backend.
type Namespace struct {
	inner  KeyValueStore
	prefix string
}

func NewNamespace(inner KeyValueStore, prefix string) *Namespace {
	return &Namespace{inner: inner, prefix: prefix}
}

func (n *Namespace) key(k string) string {
	if n.prefix == "" {
		return k
	}
	return n.prefix + ":" + k
}

func (n *Namespace) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.key(key))
}

func (n *Namespace) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return n.inner.Set(ctx, n.key(key), value)
}

func (n *Namespace) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.key(key))
}
