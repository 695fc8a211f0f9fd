// Package cache keeps fetched Medium payloads between builds.
package cache

import (
	"context"
	"time"
)

// Store is a byte cache with per-key expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

const DefaultPrefix = "portfolio:"
