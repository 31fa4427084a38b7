package audiocache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/geo"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(NewMemoryStore(time.Hour), ttl)
}

func TestKey_NearbyCoordinatesCollide(t *testing.T) {
	// ~100m apart: same rounded cell, same key on purpose
	a := Key(geo.Point{Lat: 40.7128, Lng: -74.0060}, 0, "inworld", "Dennis")
	b := Key(geo.Point{Lat: 40.7131, Lng: -74.0063}, 0, "inworld", "Dennis")
	if a != b {
		t.Error("Expected nearby coordinates to share a cache key")
	}

	far := Key(geo.Point{Lat: 40.80, Lng: -74.0060}, 0, "inworld", "Dennis")
	if a == far {
		t.Error("Expected distant coordinates to use a different key")
	}
}

func TestKey_ComponentsSeparateEntries(t *testing.T) {
	p := geo.Point{Lat: 40.7128, Lng: -74.0060}
	base := Key(p, 0, "inworld", "Dennis")

	if Key(p, 1, "inworld", "Dennis") == base {
		t.Error("Expected slot to be part of the key")
	}
	if Key(p, 0, "elevenlabs", "Dennis") == base {
		t.Error("Expected speech provider to be part of the key")
	}
	if Key(p, 0, "inworld", "Ashley") == base {
		t.Error("Expected voice to be part of the key")
	}
}

func TestGetOrGenerate_MissThenHit(t *testing.T) {
	m := newTestManager(time.Minute)
	calls := 0

	audio, hit, err := m.GetOrGenerate(context.Background(), "k1", func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("mp3"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("First call should be a miss")
	}
	if !bytes.Equal(audio, []byte("mp3")) {
		t.Error("Unexpected audio")
	}

	audio, hit, err = m.GetOrGenerate(context.Background(), "k1", func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("other"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("Second call should be a hit")
	}
	if !bytes.Equal(audio, []byte("mp3")) {
		t.Error("Hit should return the stored audio")
	}
	if calls != 1 {
		t.Errorf("Expected 1 generator call, got %d", calls)
	}
}

func TestGetOrGenerate_SingleFlight(t *testing.T) {
	m := newTestManager(time.Minute)
	var calls int32
	release := make(chan struct{})

	const n = 16
	results := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			audio, _, err := m.GetOrGenerate(context.Background(), "shared", func(ctx context.Context) ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return []byte("shared-audio"), nil
			})
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = audio
		}(i)
	}

	// Let every goroutine reach the cache before releasing the generator
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly 1 generation for %d concurrent callers, got %d", n, got)
	}
	for i, audio := range results {
		if !bytes.Equal(audio, []byte("shared-audio")) {
			t.Errorf("Caller %d got wrong audio", i)
		}
	}
}

func TestGetOrGenerate_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	m := NewManager(store, 100*time.Millisecond)

	if _, _, err := m.GetOrGenerate(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte("v1"), nil
	}); err != nil {
		t.Fatal(err)
	}

	// Just inside the TTL: still a hit
	if _, hit, _ := m.GetOrGenerate(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte("v2"), nil
	}); !hit {
		t.Error("Expected a hit before TTL expiry")
	}

	time.Sleep(120 * time.Millisecond)

	audio, hit, err := m.GetOrGenerate(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte("v3"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("Expected a miss after TTL expiry")
	}
	if !bytes.Equal(audio, []byte("v3")) {
		t.Error("Expected regenerated audio after expiry")
	}
}

func TestGetOrGenerate_FailureStoresNothing(t *testing.T) {
	m := newTestManager(time.Minute)
	boom := errors.New("synthesis exhausted")

	_, _, err := m.GetOrGenerate(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected generator error surfaced, got %v", err)
	}

	// A later request retries from scratch and succeeds
	audio, hit, err := m.GetOrGenerate(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte("recovered"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("Failed generation must not populate the cache")
	}
	if !bytes.Equal(audio, []byte("recovered")) {
		t.Error("Expected the retry's audio")
	}
}

func TestGetOrGenerate_DisconnectDoesNotAbortGeneration(t *testing.T) {
	m := newTestManager(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, _, err := m.GetOrGenerate(ctx, "k", func(genCtx context.Context) ([]byte, error) {
			close(started)
			select {
			case <-release:
				return []byte("survived"), nil
			case <-genCtx.Done():
				return nil, genCtx.Err()
			}
		})
		errCh <- err
	}()

	<-started
	cancel() // caller walks away mid-generation

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected the caller to see cancellation, got %v", err)
	}

	// The generation itself was detached and still completes
	close(release)

	deadline := time.After(time.Second)
	for {
		if audio, found := m.Peek(context.Background(), "k"); found {
			if !bytes.Equal(audio, []byte("survived")) {
				t.Error("Unexpected cached audio")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("Generation did not populate the cache after caller disconnect")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPeek(t *testing.T) {
	m := newTestManager(time.Minute)

	if _, found := m.Peek(context.Background(), "nope"); found {
		t.Error("Expected miss for unknown key")
	}

	if _, _, err := m.GetOrGenerate(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte("mp3"), nil
	}); err != nil {
		t.Fatal(err)
	}

	audio, found := m.Peek(context.Background(), "k")
	if !found || !bytes.Equal(audio, []byte("mp3")) {
		t.Error("Expected Peek to return the stored audio")
	}
}

func TestOnLookupHook(t *testing.T) {
	m := newTestManager(time.Minute)
	var hits, misses int
	m.OnLookup(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})

	m.GetOrGenerate(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte("x"), nil
	})
	m.GetOrGenerate(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte("x"), nil
	})

	if misses != 1 || hits != 1 {
		t.Errorf("Expected 1 miss and 1 hit, got %d/%d", misses, hits)
	}
}
