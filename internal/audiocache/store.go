// Package audiocache is the content-addressed store for generated narration
// audio. Keys collide on purpose for nearby listeners, entries expire lazily,
// and concurrent misses for one key share a single generation.
package audiocache

import (
	"context"
	"time"
)

// Entry is one stored audio artifact. CreatedAt drives lazy TTL checks at
// read time; stores never judge freshness themselves.
type Entry struct {
	Audio     []byte    `json:"audio"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists audio artifacts. Implementations must tolerate concurrent
// readers and idempotent rewrites of the same key.
type Store interface {
	// Read returns the entry for key, or (nil, nil) when absent.
	Read(ctx context.Context, key string) (*Entry, error)

	Write(ctx context.Context, key string, entry *Entry) error

	Close() error
}
