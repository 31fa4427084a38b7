// Package freepool serves the free tier. Paid scans are recorded as sessions
// (ordered lists of cached audio keys); free listeners replay one of those
// sessions instead of triggering new provider calls. Which session a listener
// gets is stable for an hour per IP, so refreshing the page replays the same
// sky.
package freepool

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"dreaming-of-a-jet-plane/scanner/internal/audiocache"
	"dreaming-of-a-jet-plane/scanner/internal/constants"
)

// ErrPoolEmpty is returned when no sessions have been recorded yet.
var ErrPoolEmpty = errors.New("free pool has no sessions")

// Session is one recorded scan: the audio cache keys of its narrations in
// playback order.
type Session struct {
	ID        string    `json:"id"`
	Keys      []string  `json:"keys"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Pool maintains the FIFO session index in the shared artifact store.
type Pool struct {
	store audiocache.Store
	memo  *gocache.Cache

	// mu serializes index rewrites within this process; cross-process the
	// write is last-wins, which is acceptable for a best-effort pool.
	mu sync.Mutex
}

// NewPool creates a free pool over the same store that holds the audio.
func NewPool(store audiocache.Store) *Pool {
	return &Pool{
		store: store,
		memo:  gocache.New(constants.FreePoolIndexCacheTTL, 2*constants.FreePoolIndexCacheTTL),
	}
}

// Add records a finished scan session, evicting the oldest sessions beyond
// the pool limit.
func (p *Pool) Add(ctx context.Context, session Session) error {
	if len(session.Keys) == 0 {
		return fmt.Errorf("refusing to record a session with no audio keys")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sessions, err := p.load(ctx)
	if err != nil {
		return err
	}

	sessions = append(sessions, session)
	if len(sessions) > constants.FreePoolMaxSessions {
		sessions = sessions[len(sessions)-constants.FreePoolMaxSessions:]
	}

	if err := p.save(ctx, sessions); err != nil {
		return err
	}
	p.memo.Set(constants.FreePoolIndexKey, sessions, gocache.DefaultExpiration)
	return nil
}

// SessionFor picks the session a listener replays: stable per IP per hour,
// spread across the pool.
func (p *Pool) SessionFor(ctx context.Context, ip string, now time.Time) (*Session, error) {
	sessions, err := p.cachedIndex(ctx)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrPoolEmpty
	}

	seed := fmt.Sprintf("%s:%s", ip, now.UTC().Format("2006-01-02-15"))
	sum := md5.Sum([]byte(seed))
	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(len(sessions))

	session := sessions[idx]
	return &session, nil
}

// Size returns the current number of recorded sessions.
func (p *Pool) Size(ctx context.Context) (int, error) {
	sessions, err := p.cachedIndex(ctx)
	if err != nil {
		return 0, err
	}
	return len(sessions), nil
}

// cachedIndex reads the index through a short memo, keeping free-tier
// traffic off the store.
func (p *Pool) cachedIndex(ctx context.Context) ([]Session, error) {
	if v, found := p.memo.Get(constants.FreePoolIndexKey); found {
		return v.([]Session), nil
	}

	sessions, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	p.memo.Set(constants.FreePoolIndexKey, sessions, gocache.DefaultExpiration)
	return sessions, nil
}

func (p *Pool) load(ctx context.Context) ([]Session, error) {
	entry, err := p.store.Read(ctx, constants.FreePoolIndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read free pool index: %w", err)
	}
	if entry == nil {
		return nil, nil
	}

	var sessions []Session
	if err := json.Unmarshal(entry.Audio, &sessions); err != nil {
		return nil, fmt.Errorf("corrupt free pool index: %w", err)
	}
	return sessions, nil
}

func (p *Pool) save(ctx context.Context, sessions []Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal free pool index: %w", err)
	}
	entry := &audiocache.Entry{Audio: data, CreatedAt: time.Now()}
	if err := p.store.Write(ctx, constants.FreePoolIndexKey, entry); err != nil {
		return fmt.Errorf("failed to write free pool index: %w", err)
	}
	return nil
}
