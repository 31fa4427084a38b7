// Package api holds the HTTP handlers. Handlers parse and validate input,
// call the scan service, and shape responses; the pipeline logic lives below
// them.
package api

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dreaming-of-a-jet-plane/scanner/internal/config"
	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/fallback"
	"dreaming-of-a-jet-plane/scanner/internal/freepool"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/logging"
	"dreaming-of-a-jet-plane/scanner/internal/services"
	"dreaming-of-a-jet-plane/scanner/internal/workers"
)

// Handlers bundles the request handlers and their dependencies.
type Handlers struct {
	cfg    *config.Config
	scans  *services.ScanService
	pregen *workers.Pregenerator
	pool   *freepool.Pool
}

// NewHandlers creates the handler set. pool may be nil when the free tier is
// disabled.
func NewHandlers(cfg *config.Config, scans *services.ScanService, pregen *workers.Pregenerator, pool *freepool.Pool) *Handlers {
	return &Handlers{cfg: cfg, scans: scans, pregen: pregen, pool: pool}
}

// ScanHandler handles GET /api/v1/scan. Coordinates come from query
// parameters or, when absent, from IP geolocation. The response lists the
// narrations and the audio keys the client will fetch next; pre-generation
// for those keys starts before the response is written.
func (h *Handlers) ScanHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := h.overrideOptions(r)
	if err != nil {
		respondWithError(w, http.StatusForbidden, err.Error())
		return
	}

	loc, city, err := h.resolveLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.scans.Scan(r.Context(), loc, city, opts)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	// Warm the cache for the audio requests this scan will trigger
	h.pregen.Warm(loc, city, opts)

	respondWithSuccess(w, http.StatusOK, result)
}

// AudioHandler handles GET /api/v1/audio/{slot}. The response body is the
// MP3 itself; X-Cache reports whether generation happened.
func (h *Handlers) AudioHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := h.overrideOptions(r)
	if err != nil {
		respondWithError(w, http.StatusForbidden, err.Error())
		return
	}

	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "slot must be an integer")
		return
	}

	loc, city, err := h.resolveLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	audio, hit, err := h.scans.SlotAudio(r.Context(), loc, city, slot, opts)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSlotOutOfRange):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNoNarrationForSlot):
			respondWithError(w, http.StatusNotFound, "no aircraft for this slot right now")
		default:
			h.respondPipelineError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Write(audio)
}

// Fixed clips for the touchpoints clients hit before the first narration.
const (
	introText    = "Welcome to the sky scanner. Put your headphones on and look up. We are about to find the planes flying over you right now."
	scanningText = "Scanning the skies above you. This will only take a moment."
)

// IntroHandler handles GET /api/v1/intro: the welcome clip, synthesized once
// per voice and served from the cache afterwards.
func (h *Handlers) IntroHandler(w http.ResponseWriter, r *http.Request) {
	h.serveStatic(w, r, "intro", introText, false)
}

// ScanningHandler handles GET /api/v1/scanning, the filler clients play while
// waiting for the first narration. This is the early touchpoint: it kicks off
// pre-generation for the scan that follows, then streams immediately.
func (h *Handlers) ScanningHandler(w http.ResponseWriter, r *http.Request) {
	h.serveStatic(w, r, "scanning", scanningText, true)
}

func (h *Handlers) serveStatic(w http.ResponseWriter, r *http.Request, name, text string, warm bool) {
	opts, err := h.overrideOptions(r)
	if err != nil {
		respondWithError(w, http.StatusForbidden, err.Error())
		return
	}

	if warm {
		if loc, city, err := h.resolveLocation(r); err == nil {
			h.pregen.Warm(loc, city, opts)
		} else {
			logging.Debug("Touchpoint could not resolve a location for pre-generation", "error", err.Error())
		}
	}

	audio, hit, err := h.scans.StaticAudio(r.Context(), name, text, opts)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Write(audio)
}

// FreeSessionResponse lists a replayable session for the free tier.
type FreeSessionResponse struct {
	SessionID string   `json:"session_id"`
	City      string   `json:"city,omitempty"`
	AudioKeys []string `json:"audio_keys"`
}

// FreeSessionHandler handles GET /api/v1/free/session. Free listeners replay
// a recorded session instead of triggering provider calls.
func (h *Handlers) FreeSessionHandler(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respondWithError(w, http.StatusNotFound, "free tier is disabled")
		return
	}

	session, err := h.pool.SessionFor(r.Context(), clientIP(r), time.Now())
	if err != nil {
		if errors.Is(err, freepool.ErrPoolEmpty) {
			respondWithError(w, http.StatusServiceUnavailable, "no sessions recorded yet, try again soon")
			return
		}
		logging.Error("Free pool lookup failed", "error", err.Error())
		respondWithError(w, http.StatusInternalServerError, "free pool unavailable")
		return
	}

	respondWithSuccess(w, http.StatusOK, &FreeSessionResponse{
		SessionID: session.ID,
		City:      session.City,
		AudioKeys: session.Keys,
	})
}

// FreeAudioHandler handles GET /api/v1/free/audio/{key}: serves already
// cached audio only, never generating.
func (h *Handlers) FreeAudioHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	audio, found := h.scans.CachedAudio(r.Context(), key)
	if !found {
		respondWithError(w, http.StatusNotFound, "this clip has expired")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("X-Cache", "HIT")
	w.Write(audio)
}

// resolveLocation reads lat/lng from the query, falling back to IP
// geolocation. The optional city parameter feeds the duplicate-destination
// rule; geolocation fills it when absent.
func (h *Handlers) resolveLocation(r *http.Request) (geo.Point, string, error) {
	q := r.URL.Query()
	city := q.Get("city")

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return geo.Point{}, "", errors.New("lat must be a number")
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return geo.Point{}, "", errors.New("lng must be a number")
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return geo.Point{}, "", errors.New("coordinates out of range")
		}
		return geo.Point{Lat: lat, Lng: lng}, city, nil
	}

	loc, err := h.scans.Locate(r.Context(), clientIP(r))
	if err != nil {
		return geo.Point{}, "", errors.New("could not determine your location; pass lat and lng")
	}
	if city == "" {
		city = loc.City
	}
	return geo.Point{Lat: loc.Latitude, Lng: loc.Longitude}, city, nil
}

// overrideOptions parses the operator provider override headers. The
// override value is "capability=provider" pairs, e.g.
// "aircraft=fr24,speech=polly", and requires the shared secret.
func (h *Handlers) overrideOptions(r *http.Request) (services.Options, error) {
	var opts services.Options

	override := r.Header.Get(constants.HeaderProviderOverride)
	if override == "" {
		return opts, nil
	}

	secret := r.Header.Get(constants.HeaderOverrideSecret)
	if h.cfg.OverrideSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.OverrideSecret)) != 1 {
		return opts, errors.New("invalid override secret")
	}

	for _, pair := range strings.Split(override, ",") {
		capability, provider, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			return opts, errors.New("override must be capability=provider pairs")
		}
		switch capability {
		case "aircraft":
			opts.AircraftOverride = provider
		case "speech":
			opts.SpeechOverride = provider
		default:
			return opts, errors.New("unknown override capability: " + capability)
		}
	}
	return opts, nil
}

// respondPipelineError maps pipeline failures to status codes.
func (h *Handlers) respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fallback.ErrUnknownProvider):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fallback.ErrNoProviderAvailable):
		respondWithError(w, http.StatusServiceUnavailable, "nothing available right now, try again in a moment")
	default:
		logging.Error("Request failed", "error", err.Error())
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

// clientIP extracts the caller's address, preferring proxy headers in the
// order the original deployment trusted them.
func clientIP(r *http.Request) string {
	for _, header := range []string{"CF-Connecting-Ip", "X-Real-Ip", "X-Forwarded-For"} {
		if v := r.Header.Get(header); v != "" {
			parts := strings.Split(v, ",")
			return strings.TrimSpace(parts[0])
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
