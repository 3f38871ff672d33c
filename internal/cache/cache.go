// Package cache memoizes loaded datasets and derived results. Entries are
// keyed by a content hash of their inputs and invalidated explicitly.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key hashes data together with any parameters that change the result.
func Key(data []byte, params ...any) string {
	h := sha256.New()
	h.Write(data)
	for _, p := range params {
		fmt.Fprintf(h, "\x00%v", p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Memory is a bounded in-process LRU.
type Memory[V any] struct {
	lru *lru.Cache[string, V]
}

func NewMemory[V any](size int) (*Memory[V], error) {
	c, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Memory[V]{lru: c}, nil
}

// NewMemoryWithEvict calls onEvict for every entry that leaves the cache,
// whether evicted for space or removed.
func NewMemoryWithEvict[V any](size int, onEvict func(key string, v V)) (*Memory[V], error) {
	c, err := lru.NewWithEvict[string, V](size, onEvict)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Memory[V]{lru: c}, nil
}

func (m *Memory[V]) Get(key string) (V, bool) { return m.lru.Get(key) }

func (m *Memory[V]) Add(key string, v V) { m.lru.Add(key, v) }

func (m *Memory[V]) Remove(key string) { m.lru.Remove(key) }

func (m *Memory[V]) Purge() { m.lru.Purge() }

func (m *Memory[V]) Len() int { return m.lru.Len() }

// GetOrCompute returns the cached value for key, or computes and stores it.
// Errors are not cached.
func (m *Memory[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := m.lru.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	m.lru.Add(key, v)
	return v, nil
}
