// Package services wires the pipeline together: geolocate, fetch aircraft
// through the fallback chain, select, narrate, and serve audio through the
// cache.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/analytics"
	"dreaming-of-a-jet-plane/scanner/internal/audiocache"
	"dreaming-of-a-jet-plane/scanner/internal/config"
	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/fallback"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/logging"
	"dreaming-of-a-jet-plane/scanner/internal/metrics"
	"dreaming-of-a-jet-plane/scanner/internal/models"
	"dreaming-of-a-jet-plane/scanner/internal/narration"
	"dreaming-of-a-jet-plane/scanner/internal/providers"
	"dreaming-of-a-jet-plane/scanner/internal/selection"
)

// ErrSlotOutOfRange is returned for a slot index past the configured limit.
var ErrSlotOutOfRange = errors.New("slot index out of range")

// ErrNoNarrationForSlot is returned when fewer aircraft were found than the
// requested slot.
var ErrNoNarrationForSlot = errors.New("no narration for slot")

// Options carries per-request knobs: operator provider pins.
type Options struct {
	AircraftOverride string
	SpeechOverride   string
}

// ScanResult is the outcome of one full scan.
type ScanResult struct {
	Location   models.GeoLocation           `json:"location"`
	RadiusKm   float64                      `json:"radius_km"`
	Aircraft   []models.AircraftObservation `json:"aircraft"`
	Narrations []models.Narration           `json:"narrations"`
	AudioKeys  []string                     `json:"audio_keys"`
	Provider   string                       `json:"provider"`
}

// ScanService owns the discovery-and-narration pipeline.
type ScanService struct {
	cfg           *config.Config
	geolocator    providers.Geolocator
	aircraftChain *fallback.Chain[providers.AircraftProvider]
	speechChain   *fallback.Chain[providers.SpeechProvider]
	selector      *selection.Engine
	resolver      *narration.Resolver
	cache         *audiocache.Manager
	sink          analytics.Sink
	metricsReg    *metrics.MetricsRegistry

	// now is swapped in tests to pin the seasonal override.
	now func() time.Time
}

// NewScanService wires the pipeline.
func NewScanService(
	cfg *config.Config,
	geolocator providers.Geolocator,
	aircraftChain *fallback.Chain[providers.AircraftProvider],
	speechChain *fallback.Chain[providers.SpeechProvider],
	selector *selection.Engine,
	resolver *narration.Resolver,
	cache *audiocache.Manager,
	sink analytics.Sink,
	metricsReg *metrics.MetricsRegistry,
) *ScanService {
	return &ScanService{
		cfg:           cfg,
		geolocator:    geolocator,
		aircraftChain: aircraftChain,
		speechChain:   speechChain,
		selector:      selector,
		resolver:      resolver,
		cache:         cache,
		sink:          sink,
		metricsReg:    metricsReg,
		now:           time.Now,
	}
}

// Locate resolves a client IP to coordinates and a city name.
func (s *ScanService) Locate(ctx context.Context, ip string) (*models.GeoLocation, error) {
	return s.geolocator.Locate(ctx, ip)
}

// Scan runs discovery and narration for a location, without synthesizing any
// audio. The returned audio keys are what the audio endpoint (and the
// pre-generation worker) will ask for.
func (s *ScanService) Scan(ctx context.Context, loc geo.Point, city string, opts Options) (*ScanResult, error) {
	narrations, observations, providerUsed, err := s.narrate(ctx, loc, city, opts)
	if err != nil {
		return nil, err
	}

	speechName, voice, err := s.speechIdentity(opts)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(narrations))
	for i := range narrations {
		keys[i] = audiocache.Key(loc, narrations[i].Slot, speechName, voice)
	}

	s.sink.Emit("scan_completed", map[string]interface{}{
		"provider": providerUsed,
		"aircraft": len(observations),
		"slots":    len(narrations),
		"city":     city,
	})

	return &ScanResult{
		Location:   models.GeoLocation{Latitude: loc.Lat, Longitude: loc.Lng, City: city},
		RadiusKm:   s.cfg.ScanRadiusKm,
		Aircraft:   observations,
		Narrations: narrations,
		AudioKeys:  keys,
		Provider:   providerUsed,
	}, nil
}

// SlotAudio returns the MP3 for one narration slot, generating it on a cache
// miss. Concurrent requests for the same slot share one generation.
func (s *ScanService) SlotAudio(ctx context.Context, loc geo.Point, city string, slot int, opts Options) ([]byte, bool, error) {
	if slot < 0 || slot >= constants.MaxSlots {
		return nil, false, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}

	speechName, voice, err := s.speechIdentity(opts)
	if err != nil {
		return nil, false, err
	}
	key := audiocache.Key(loc, slot, speechName, voice)

	return s.cache.GetOrGenerate(ctx, key, func(genCtx context.Context) ([]byte, error) {
		narrations, _, _, err := s.narrate(genCtx, loc, city, opts)
		if err != nil {
			return nil, err
		}
		if slot >= len(narrations) {
			return nil, fmt.Errorf("%w: slot %d of %d", ErrNoNarrationForSlot, slot, len(narrations))
		}
		return s.synthesize(genCtx, narrations[slot].Text, opts)
	})
}

// AudioKey exposes the cache key derivation for a request, used by the
// pre-generation worker and the free pool recorder.
func (s *ScanService) AudioKey(loc geo.Point, slot int, opts Options) (string, error) {
	speechName, voice, err := s.speechIdentity(opts)
	if err != nil {
		return "", err
	}
	return audiocache.Key(loc, slot, speechName, voice), nil
}

// StaticAudio serves a location-independent clip such as the intro, cached
// under a name instead of coordinates and synthesized on first use.
func (s *ScanService) StaticAudio(ctx context.Context, name, text string, opts Options) ([]byte, bool, error) {
	speechName, voice, err := s.speechIdentity(opts)
	if err != nil {
		return nil, false, err
	}
	key := audiocache.StaticKey(name, speechName, voice)

	return s.cache.GetOrGenerate(ctx, key, func(genCtx context.Context) ([]byte, error) {
		return s.synthesize(genCtx, text, opts)
	})
}

// CachedAudio serves an artifact by key without triggering generation.
func (s *ScanService) CachedAudio(ctx context.Context, key string) ([]byte, bool) {
	return s.cache.Peek(ctx, key)
}

// Slots returns the configured narration slot count.
func (s *ScanService) Slots() int {
	return s.cfg.Slots
}

// narrate runs the non-audio half of the pipeline. Quiet skies are not an
// error: every provider reporting empty yields the single no-aircraft
// narration.
func (s *ScanService) narrate(ctx context.Context, loc geo.Point, city string, opts Options) ([]models.Narration, []models.AircraftObservation, string, error) {
	box := geo.BoxAround(loc, s.cfg.ScanRadiusKm)

	chain := s.aircraftChain
	if opts.AircraftOverride != "" {
		pinned, err := chain.Pinned(opts.AircraftOverride)
		if err != nil {
			return nil, nil, "", err
		}
		chain = pinned
	}

	observations, providerUsed, err := fallback.Resolve(ctx, chain,
		func(ctx context.Context, p providers.AircraftProvider) ([]models.AircraftObservation, error) {
			return p.FetchAircraft(ctx, box, loc)
		})
	if err != nil {
		if errors.Is(err, fallback.ErrEmpty) {
			logging.Info("Scan found empty skies", "lat", loc.Lat, "lng", loc.Lng)
			return []models.Narration{s.resolver.NoAircraft()}, nil, "", nil
		}
		s.metricsReg.FallbackExhaustedTotal.WithLabelValues("aircraft").Inc()
		return nil, nil, "", err
	}
	s.metricsReg.AircraftObservedTotal.WithLabelValues(providerUsed).Add(float64(len(observations)))

	selected := s.selector.Select(observations, s.cfg.Slots, loc)

	santa := narration.SantaActive(s.now())
	narrations := make([]models.Narration, 0, len(selected))
	picks := make([]models.AircraftObservation, 0, len(selected))
	for i, candidate := range selected {
		if santa && i == 0 {
			narrations = append(narrations, s.resolver.Santa(i, candidate.DistanceKm))
		} else {
			narrations = append(narrations, s.resolver.Resolve(candidate, city, i))
		}
		picks = append(picks, candidate.Aircraft)
	}
	if len(narrations) == 0 {
		narrations = append(narrations, s.resolver.NoAircraft())
	}

	return narrations, picks, providerUsed, nil
}

// synthesize runs the speech fallback chain for one narration text.
func (s *ScanService) synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	chain := s.speechChain
	if opts.SpeechOverride != "" {
		pinned, err := chain.Pinned(opts.SpeechOverride)
		if err != nil {
			return nil, err
		}
		chain = pinned
	}

	start := time.Now()
	audio, providerUsed, err := fallback.Resolve(ctx, chain,
		func(ctx context.Context, p providers.SpeechProvider) ([]byte, error) {
			return p.Synthesize(ctx, text)
		})
	if err != nil {
		s.metricsReg.FallbackExhaustedTotal.WithLabelValues("speech").Inc()
		return nil, err
	}

	s.metricsReg.SynthesisDuration.WithLabelValues(providerUsed).Observe(time.Since(start).Seconds())
	s.sink.Emit("audio_generated", map[string]interface{}{
		"provider": providerUsed,
		"chars":    len(text),
	})
	return audio, nil
}

// speechIdentity resolves which provider identity keys the cache: the pinned
// provider when overridden, the primary otherwise. Keys follow configuration,
// not per-request fallback luck; if the primary is down and a fallback voice
// is stored under the primary's key, the entry is refreshed when the primary
// recovers at worst one TTL later.
func (s *ScanService) speechIdentity(opts Options) (string, string, error) {
	providersList := s.speechChain.Providers()
	if opts.SpeechOverride != "" {
		for _, p := range providersList {
			if p.Name() == opts.SpeechOverride {
				return p.Name(), p.Voice(), nil
			}
		}
		return "", "", fmt.Errorf("%w: %q for speech", fallback.ErrUnknownProvider, opts.SpeechOverride)
	}
	if len(providersList) == 0 {
		return "", "", fallback.ErrNoProviderAvailable
	}
	return providersList[0].Name(), providersList[0].Voice(), nil
}
