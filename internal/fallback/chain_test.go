package fallback

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	name    string
	result  string
	err     error
	calls   int
	sleepMs int
}

func (f *fakeProvider) Name() string { return f.name }

func callChain(t *testing.T, c *Chain[*fakeProvider]) (string, string, error) {
	t.Helper()
	return Resolve(context.Background(), c, func(ctx context.Context, p *fakeProvider) (string, error) {
		p.calls++
		if p.sleepMs > 0 {
			select {
			case <-time.After(time.Duration(p.sleepMs) * time.Millisecond):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		if p.err != nil {
			return "", p.err
		}
		return p.result, nil
	})
}

func TestResolve_FirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "first", result: "ok"}
	second := &fakeProvider{name: "second", result: "never"}
	c := NewChain("test", []*fakeProvider{first, second}, time.Second, 5*time.Second)

	result, provider, err := callChain(t, c)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if result != "ok" || provider != "first" {
		t.Errorf("Expected ok/first, got %s/%s", result, provider)
	}
	if second.calls != 0 {
		t.Error("Second provider should not have been attempted")
	}
}

func TestResolve_FallsThroughOnError(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("boom")}
	second := &fakeProvider{name: "second", result: "rescued"}
	c := NewChain("test", []*fakeProvider{first, second}, time.Second, 5*time.Second)

	result, provider, err := callChain(t, c)
	if err != nil {
		t.Fatalf("Expected second provider to rescue, got %v", err)
	}
	if result != "rescued" || provider != "second" {
		t.Errorf("Expected rescued/second, got %s/%s", result, provider)
	}
}

func TestResolve_EmptyTreatedAsFailure(t *testing.T) {
	first := &fakeProvider{name: "first", err: ErrEmpty}
	second := &fakeProvider{name: "second", result: "found"}
	c := NewChain("test", []*fakeProvider{first, second}, time.Second, 5*time.Second)

	result, provider, err := callChain(t, c)
	if err != nil {
		t.Fatalf("Empty first result should not fail the chain, got %v", err)
	}
	if result != "found" || provider != "second" {
		t.Errorf("Expected found/second, got %s/%s", result, provider)
	}
}

func TestResolve_AllFail(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("down")}
	second := &fakeProvider{name: "second", err: ErrEmpty}
	c := NewChain("test", []*fakeProvider{first, second}, time.Second, 5*time.Second)

	_, _, err := callChain(t, c)
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Fatalf("Expected ErrNoProviderAvailable, got %v", err)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Error("Every provider should have been attempted exactly once")
	}
}

func TestResolve_BudgetStopsChain(t *testing.T) {
	slow := &fakeProvider{name: "slow", err: errors.New("down"), sleepMs: 60}
	never := &fakeProvider{name: "never", result: "late"}
	c := NewChain("test", []*fakeProvider{slow, never}, time.Second, 30*time.Millisecond)

	_, _, err := callChain(t, c)
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Fatalf("Expected ErrNoProviderAvailable after budget, got %v", err)
	}
	if never.calls != 0 {
		t.Error("Budget exhaustion should prevent further attempts")
	}
}

func TestResolve_PerCallTimeout(t *testing.T) {
	hang := &fakeProvider{name: "hang", sleepMs: 200, result: "slow"}
	fast := &fakeProvider{name: "fast", result: "quick"}
	c := NewChain("test", []*fakeProvider{hang, fast}, 20*time.Millisecond, 5*time.Second)

	result, provider, err := callChain(t, c)
	if err != nil {
		t.Fatalf("Expected fast provider to win after timeout, got %v", err)
	}
	if result != "quick" || provider != "fast" {
		t.Errorf("Expected quick/fast, got %s/%s", result, provider)
	}
}

func TestResolve_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakeProvider{name: "p", result: "ok"}
	c := NewChain("test", []*fakeProvider{p}, time.Second, 5*time.Second)

	_, _, err := Resolve(ctx, c, func(ctx context.Context, p *fakeProvider) (string, error) {
		p.calls++
		return p.result, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if p.calls != 0 {
		t.Error("Cancelled context should prevent any attempts")
	}
}

func TestPinned(t *testing.T) {
	first := &fakeProvider{name: "first", result: "a"}
	second := &fakeProvider{name: "second", result: "b"}
	c := NewChain("test", []*fakeProvider{first, second}, time.Second, 5*time.Second)

	pinned, err := c.Pinned("second")
	if err != nil {
		t.Fatalf("Expected pin to succeed, got %v", err)
	}
	result, provider, err := callChain(t, pinned)
	if err != nil {
		t.Fatal(err)
	}
	if result != "b" || provider != "second" {
		t.Errorf("Expected b/second, got %s/%s", result, provider)
	}
	if first.calls != 0 {
		t.Error("Pinned chain should skip other providers")
	}

	if _, err := c.Pinned("ghost"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Expected ErrUnknownProvider, got %v", err)
	}

	if len(c.Providers()) != 2 {
		t.Error("Pinning must not mutate the original chain")
	}
}

func TestObserverSeesEveryAttempt(t *testing.T) {
	first := &fakeProvider{name: "first", err: ErrEmpty}
	second := &fakeProvider{name: "second", result: "done"}
	c := NewChain("aircraft", []*fakeProvider{first, second}, time.Second, 5*time.Second)

	var outcomes []Outcome
	c.Observe(func(o Outcome) { outcomes = append(outcomes, o) })

	if _, _, err := callChain(t, c); err != nil {
		t.Fatal(err)
	}

	if len(outcomes) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].Empty || outcomes[0].Success {
		t.Error("First outcome should be an empty failure")
	}
	if !outcomes[1].Success || outcomes[1].Provider != "second" || outcomes[1].Rank != 1 {
		t.Errorf("Unexpected second outcome: %+v", outcomes[1])
	}
	if outcomes[0].Capability != "aircraft" {
		t.Errorf("Expected capability aircraft, got %s", outcomes[0].Capability)
	}
}
