package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const memorySize = 64

// MemoryStore is an in-process LRU. All keys share the TTL given to
// NewMemoryStore; the ttl passed to Set is ignored.
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](memorySize, nil, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.lru.Add(key, value)
	return nil
}

func (m *MemoryStore) Close() error {
	m.lru.Purge()
	return nil
}
