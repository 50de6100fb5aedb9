package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider is the byte-oriented cache behind the response cache, the
// doctor read-through cache and the callback submission guard.
type CacheProvider interface {
	// Get returns ErrCacheMiss for absent keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value for expirationSeconds; zero means no expiry.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
	Delete(ctx context.Context, key string) error
	// DeletePattern removes every key matching a glob such as
	// HTTPCacheFamilyPattern("doctors").
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Increment atomically adds one to the counter at key. The expiry is set
	// only when the counter is created, so a window is never extended. It
	// returns the new count and the time left before the counter resets.
	Increment(ctx context.Context, key string, expirationSeconds int) (int64, time.Duration, error)
}
