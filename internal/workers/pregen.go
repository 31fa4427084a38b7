// Package workers holds background tasks spawned off the request path.
package workers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dreaming-of-a-jet-plane/scanner/internal/freepool"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/logging"
	"dreaming-of-a-jet-plane/scanner/internal/metrics"
	"dreaming-of-a-jet-plane/scanner/internal/services"
)

// Pregenerator warms the audio cache ahead of the listener's follow-up
// requests. Strictly fire-and-forget: it never blocks a response, and its
// failures are logged and dropped.
type Pregenerator struct {
	scans      *services.ScanService
	pool       *freepool.Pool
	metricsReg *metrics.MetricsRegistry
	budget     time.Duration
}

// NewPregenerator creates a pre-generation worker. pool may be nil when the
// free tier is disabled.
func NewPregenerator(scans *services.ScanService, pool *freepool.Pool, metricsReg *metrics.MetricsRegistry, budget time.Duration) *Pregenerator {
	return &Pregenerator{
		scans:      scans,
		pool:       pool,
		metricsReg: metricsReg,
		budget:     budget,
	}
}

// Warm kicks off cache warming for every slot at loc and returns
// immediately. If the listener's real request arrives first, it joins the
// same in-flight generation through the cache's single-flight guarantee.
func (p *Pregenerator) Warm(loc geo.Point, city string, opts services.Options) {
	go p.run(loc, city, opts)
}

func (p *Pregenerator) run(loc geo.Point, city string, opts services.Options) {
	ctx, cancel := context.WithTimeout(context.Background(), p.budget)
	defer cancel()

	slots := p.scans.Slots()
	keys := make([]string, slots)

	var g errgroup.Group
	for slot := 0; slot < slots; slot++ {
		slot := slot
		g.Go(func() error {
			_, hit, err := p.scans.SlotAudio(ctx, loc, city, slot, opts)
			if err != nil {
				p.metricsReg.PregenOutcomesTotal.WithLabelValues("error").Inc()
				logging.Warn("Pre-generation failed",
					"slot", slot,
					"error", err.Error(),
				)
				return err
			}
			if hit {
				p.metricsReg.PregenOutcomesTotal.WithLabelValues("already_cached").Inc()
			} else {
				p.metricsReg.PregenOutcomesTotal.WithLabelValues("generated").Inc()
			}

			key, err := p.scans.AudioKey(loc, slot, opts)
			if err != nil {
				return err
			}
			keys[slot] = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Partial warm still helps; only a full session is worth recording
		return
	}

	logging.Info("Pre-generation complete", "slots", slots, "city", city)
	p.record(ctx, keys, city)
}

// record adds the warmed session to the free pool.
func (p *Pregenerator) record(ctx context.Context, keys []string, city string) {
	if p.pool == nil {
		return
	}
	session := freepool.Session{
		ID:        uuid.NewString(),
		Keys:      keys,
		City:      city,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.pool.Add(ctx, session); err != nil {
		logging.Warn("Failed to record free pool session", "error", err.Error())
	}
}
