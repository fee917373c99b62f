package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encoded values by key
type Cache interface {
	// Get decodes the value stored under key into out.
	// It reports false when the key is absent.
	Get(ctx context.Context, key string, out any) (bool, error)

	// Set stores v under key for ttl. Zero ttl means no expiry.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error

	Ping(ctx context.Context) error
	Close() error
}

// Noop is the cache used when Redis is not configured
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Ping(context.Context) error                            { return nil }
func (Noop) Close() error                                          { return nil }
