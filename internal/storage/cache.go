package storage

import (
	"strconv"
	"strings"
)

// Cache reads and writes one typed value under a fixed key.
type Cache[T any] struct {
	store  Store
	key    string
	encode func(T) string
	decode func(string) (T, error)
}

// NewCache creates a cache that stores values with encode and reads them back
// with decode.
func NewCache[T any](store Store, key string, encode func(T) string, decode func(string) (T, error)) *Cache[T] {
	return &Cache[T]{store: store, key: key, encode: encode, decode: decode}
}

// NewIntCache stores an int as its decimal string.
func NewIntCache(store Store, key string) *Cache[int] {
	return NewCache(store, key, strconv.Itoa, func(s string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(s))
	})
}

// Key returns the key the cache is bound to.
func (c *Cache[T]) Key() string {
	return c.key
}

// Get returns the stored value, or def when nothing (or an empty string) is
// stored. On any failure it returns def together with a *StorageError.
func (c *Cache[T]) Get(def T) (T, error) {
	fallback := c.encode(def)

	raw, err := c.store.Get(c.key, fallback)
	if err != nil {
		return def, err
	}
	if raw == "" {
		raw = fallback
	}

	v, err := c.decode(raw)
	if err != nil {
		return def, &StorageError{Op: "decode", Key: c.key, Err: err}
	}
	return v, nil
}

// Set writes the encoded value unconditionally.
func (c *Cache[T]) Set(v T) error {
	return c.store.Set(c.key, c.encode(v))
}

// Clear removes the stored value.
func (c *Cache[T]) Clear() error {
	return c.store.Delete(c.key)
}
