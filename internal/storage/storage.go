// Package storage persists per-visitor JSON blobs under string keys.
package storage

import (
	"context"
	"time"
)

// Store is a persistent key-value store. Get returns an error wrapping
// apperrors.ErrNotFound for absent or expired keys. A zero ttl on Set means
// the key never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by the configuration.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)
