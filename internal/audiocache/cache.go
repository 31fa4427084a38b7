package audiocache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/logging"
)

// Manager enforces the cache contract: lazy TTL at read time, and at most
// one in-flight generation per key system-wide.
type Manager struct {
	store    Store
	ttl      time.Duration
	group    singleflight.Group
	onLookup func(hit bool)
}

// NewManager creates a cache manager over store with the given entry TTL.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// OnLookup registers a hit/miss hook for metrics. Register during wiring,
// before the manager serves traffic.
func (m *Manager) OnLookup(fn func(hit bool)) {
	m.onLookup = fn
}

// Key derives the content address for one narration artifact. Coordinates
// are rounded so listeners within roughly a kilometer share entries; the
// speech provider and voice are included so a provider switch never serves
// another voice's audio.
func Key(p geo.Point, slot int, speechProvider, voice string) string {
	raw := fmt.Sprintf("%.*f:%.*f:%d:%s:%s",
		constants.CacheKeyPrecision, p.Lat,
		constants.CacheKeyPrecision, p.Lng,
		slot, speechProvider, voice)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// StaticKey addresses location-independent artifacts, such as the intro and
// scanning clips. The voice identity is still part of the key.
func StaticKey(name, speechProvider, voice string) string {
	raw := fmt.Sprintf("static:%s:%s:%s", name, speechProvider, voice)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GetOrGenerate returns the cached audio for key, generating and storing it
// on a miss. Concurrent callers for the same key share one generation; a
// generation, once started, runs to completion even if the caller that
// started it disconnects, so joined waiters and the cache still get the
// result. The boolean reports whether the call was a cache hit.
func (m *Manager) GetOrGenerate(ctx context.Context, key string, generate func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if entry := m.fresh(ctx, key); entry != nil {
		m.observe(true)
		return entry.Audio, true, nil
	}
	m.observe(false)

	ch := m.group.DoChan(key, func() (interface{}, error) {
		// The generation must survive the originating request, so it runs
		// on a detached context.
		genCtx := context.WithoutCancel(ctx)

		// Another flight may have landed between our miss and winning the
		// singleflight slot.
		if entry := m.fresh(genCtx, key); entry != nil {
			return entry.Audio, nil
		}

		audio, err := generate(genCtx)
		if err != nil {
			return nil, err
		}

		entry := &Entry{Audio: audio, CreatedAt: time.Now()}
		if err := m.store.Write(genCtx, key, entry); err != nil {
			// The artifact is good; a storage fault only costs the next
			// request a regeneration.
			logging.Warn("Failed to store generated audio",
				"key", key,
				"error", err.Error(),
			)
		}
		return audio, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]byte), false, nil
	}
}

// Peek returns the cached audio without generating, for endpoints that only
// serve what already exists.
func (m *Manager) Peek(ctx context.Context, key string) ([]byte, bool) {
	if entry := m.fresh(ctx, key); entry != nil {
		return entry.Audio, true
	}
	return nil, false
}

// fresh reads an entry and applies the lazy TTL check. Store read errors are
// treated as misses; the cache must never take a request down.
func (m *Manager) fresh(ctx context.Context, key string) *Entry {
	entry, err := m.store.Read(ctx, key)
	if err != nil {
		logging.Warn("Cache read failed, treating as miss",
			"key", key,
			"error", err.Error(),
		)
		return nil
	}
	if entry == nil {
		return nil
	}
	if time.Since(entry.CreatedAt) >= m.ttl {
		return nil
	}
	return entry
}

func (m *Manager) observe(hit bool) {
	if m.onLookup != nil {
		m.onLookup(hit)
	}
}
