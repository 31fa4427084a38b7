// Package fallback runs an ordered provider chain until one attempt yields a
// usable result. Providers are tried strictly in configured order; an empty
// but well-formed answer is treated the same as a failure so the next
// provider still gets its turn.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/logging"
)

// ErrEmpty signals a provider answered successfully but had nothing to offer.
// Chains treat it as a soft failure and continue to the next provider.
var ErrEmpty = errors.New("provider returned an empty result")

// ErrNoProviderAvailable is returned when every provider in the chain has
// been attempted without producing a usable result.
var ErrNoProviderAvailable = errors.New("all providers in chain failed")

// ErrUnknownProvider is returned when an override names a provider that is
// not part of the chain.
var ErrUnknownProvider = errors.New("override names a provider not in the chain")

// Provider is the minimum surface a chain member must expose.
type Provider interface {
	Name() string
}

// Outcome records a single attempt for analytics and metrics. It is emitted
// for every attempt, successful or not.
type Outcome struct {
	Capability string
	Provider   string
	Rank       int
	Success    bool
	Empty      bool
	Duration   time.Duration
	Err        error
}

// Observer receives attempt outcomes. Implementations must not block; a slow
// observer is the observer's bug, not the request's.
type Observer func(Outcome)

// Chain is an ordered list of providers for one capability.
type Chain[P Provider] struct {
	capability  string
	providers   []P
	callTimeout time.Duration
	budget      time.Duration
	observers   []Observer
}

// NewChain builds a chain for capability over providers in fallback order.
// callTimeout bounds each individual attempt, budget bounds the whole walk.
func NewChain[P Provider](capability string, providers []P, callTimeout, budget time.Duration) *Chain[P] {
	return &Chain[P]{
		capability:  capability,
		providers:   providers,
		callTimeout: callTimeout,
		budget:      budget,
	}
}

// Observe registers an outcome observer. Not safe to call concurrently with
// Resolve; register everything during wiring.
func (c *Chain[P]) Observe(fn Observer) {
	c.observers = append(c.observers, fn)
}

// Capability returns the name the chain was built for.
func (c *Chain[P]) Capability() string { return c.capability }

// Providers returns the chain members in fallback order.
func (c *Chain[P]) Providers() []P { return c.providers }

// Pinned returns a single-provider view of the chain for an operator
// override. The full chain is untouched.
func (c *Chain[P]) Pinned(name string) (*Chain[P], error) {
	for _, p := range c.providers {
		if p.Name() == name {
			pinned := &Chain[P]{
				capability:  c.capability,
				providers:   []P{p},
				callTimeout: c.callTimeout,
				budget:      c.budget,
				observers:   c.observers,
			}
			return pinned, nil
		}
	}
	return nil, fmt.Errorf("%w: %q for %s", ErrUnknownProvider, name, c.capability)
}

func (c *Chain[P]) emit(o Outcome) {
	for _, fn := range c.observers {
		fn(o)
	}
}

// Resolve walks the chain in order, calling fn against each provider until
// one returns a non-empty result. Every attempt is reported to the chain's
// observers. The overall budget is checked before each attempt, so a slow
// early provider cannot starve the request silently; the context handed to
// fn carries the per-call timeout.
func Resolve[P Provider, R any](ctx context.Context, c *Chain[P], fn func(context.Context, P) (R, error)) (R, string, error) {
	var zero R
	deadline := time.Now().Add(c.budget)

	var lastErr error
	for rank, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		if time.Now().After(deadline) {
			logging.Warn("Fallback budget exhausted",
				"capability", c.capability,
				"attempted", rank,
			)
			break
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		start := time.Now()
		result, err := fn(attemptCtx, provider)
		cancel()
		elapsed := time.Since(start)

		c.emit(Outcome{
			Capability: c.capability,
			Provider:   provider.Name(),
			Rank:       rank,
			Success:    err == nil,
			Empty:      errors.Is(err, ErrEmpty),
			Duration:   elapsed,
			Err:        err,
		})

		if err == nil {
			if rank > 0 {
				logging.Info("Fallback provider answered",
					"capability", c.capability,
					"provider", provider.Name(),
					"rank", rank,
				)
			}
			return result, provider.Name(), nil
		}

		lastErr = err
		if errors.Is(err, ErrEmpty) {
			logging.Debug("Provider returned empty result, trying next",
				"capability", c.capability,
				"provider", provider.Name(),
			)
		} else {
			logging.Warn("Provider attempt failed, trying next",
				"capability", c.capability,
				"provider", provider.Name(),
				"error", err.Error(),
			)
		}
	}

	if lastErr != nil {
		// Both sentinels stay inspectable: callers can tell "everyone was
		// empty" apart from "everyone was broken".
		return zero, "", fmt.Errorf("%w: %w", ErrNoProviderAvailable, lastErr)
	}
	return zero, "", ErrNoProviderAvailable
}
