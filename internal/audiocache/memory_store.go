package audiocache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps artifacts in process memory. The development and test
// default; every restart starts cold.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an in-memory store. Retention bounds memory use and
// is deliberately longer than the cache TTL; freshness is the Manager's job.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(retention, 2*retention),
	}
}

func (s *MemoryStore) Read(ctx context.Context, key string) (*Entry, error) {
	v, found := s.cache.Get(key)
	if !found {
		return nil, nil
	}
	entry := v.(Entry)
	return &entry, nil
}

func (s *MemoryStore) Write(ctx context.Context, key string, entry *Entry) error {
	s.cache.Set(key, *entry, gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
