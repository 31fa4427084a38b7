package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/analytics"
	"dreaming-of-a-jet-plane/scanner/internal/audiocache"
	"dreaming-of-a-jet-plane/scanner/internal/config"
	"dreaming-of-a-jet-plane/scanner/internal/fallback"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/metrics"
	"dreaming-of-a-jet-plane/scanner/internal/models"
	"dreaming-of-a-jet-plane/scanner/internal/narration"
	"dreaming-of-a-jet-plane/scanner/internal/providers"
	"dreaming-of-a-jet-plane/scanner/internal/refdata"
	"dreaming-of-a-jet-plane/scanner/internal/selection"
)

// Prometheus collectors register globally, so the test binary shares one
// registry.
var testMetrics = metrics.NewMetricsRegistry()

var nycUser = geo.Point{Lat: 40.7128, Lng: -74.0060}

type fakeAircraft struct {
	name  string
	obs   []models.AircraftObservation
	err   error
	calls int
}

func (f *fakeAircraft) Name() string { return f.name }

func (f *fakeAircraft) FetchAircraft(ctx context.Context, box geo.BoundingBox, center geo.Point) ([]models.AircraftObservation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.obs, nil
}

type fakeSpeech struct {
	name  string
	voice string
	audio []byte
	err   error
	calls int
}

func (f *fakeSpeech) Name() string  { return f.name }
func (f *fakeSpeech) Voice() string { return f.voice }

func (f *fakeSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

type fakeGeolocator struct {
	loc *models.GeoLocation
	err error
}

func (f *fakeGeolocator) Name() string { return "fake-geo" }

func (f *fakeGeolocator) Locate(ctx context.Context, ip string) (*models.GeoLocation, error) {
	return f.loc, f.err
}

func newTestService(t *testing.T, aircraft []providers.AircraftProvider, speech []providers.SpeechProvider) *ScanService {
	t.Helper()

	ref, err := refdata.Load()
	if err != nil {
		t.Fatalf("loading reference data: %v", err)
	}

	cfg := &config.Config{
		Slots:           2,
		ScanRadiusKm:    100,
		Units:           config.UnitsImperial,
		CacheTTL:        time.Minute,
		ProviderTimeout: time.Second,
		RequestBudget:   5 * time.Second,
	}

	cache := audiocache.NewManager(audiocache.NewMemoryStore(time.Hour), cfg.CacheTTL)

	svc := NewScanService(
		cfg,
		&fakeGeolocator{loc: &models.GeoLocation{Latitude: nycUser.Lat, Longitude: nycUser.Lng, City: "New York"}},
		fallback.NewChain("aircraft", aircraft, cfg.ProviderTimeout, cfg.RequestBudget),
		fallback.NewChain("speech", speech, cfg.ProviderTimeout, cfg.RequestBudget),
		selection.NewEngine(ref),
		narration.NewResolver(cfg.Units),
		cache,
		analytics.NoopSink{},
		testMetrics,
	)
	// Pin the clock outside the Christmas window
	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func defaultSpeech() *fakeSpeech {
	return &fakeSpeech{name: "fake-tts", voice: "test-voice", audio: []byte("mp3 bytes")}
}

// mixedSky is four aircraft over NYC: two freighters closer than two
// passenger flights bound for distinct cities.
func mixedSky() []models.AircraftObservation {
	return []models.AircraftObservation{
		{
			ICAO24: "c0ffee", Callsign: "FDX12", AirlineICAO: "FDX", AirlineName: "FedEx Express",
			IsCargo: true, DistanceKm: 8, DistanceMiles: 5,
			DestinationAirport: "MIA", DestinationCity: "Miami",
		},
		{
			ICAO24: "c0ffef", Callsign: "UPS88", AirlineICAO: "UPS", AirlineName: "UPS Airlines",
			IsCargo: true, DistanceKm: 12, DistanceMiles: 7.5,
			DestinationAirport: "ORD", DestinationCity: "Chicago",
		},
		{
			ICAO24: "abc001", Callsign: "DAL1", FlightNumber: "DL1", AirlineICAO: "DAL", AirlineName: "Delta Air Lines",
			AircraftName: "Airbus A330-300", DistanceKm: 30, DistanceMiles: 18.6,
			OriginAirport: "JFK", OriginCity: "New York",
			DestinationAirport: "LHR", DestinationCity: "London",
		},
		{
			ICAO24: "abc002", Callsign: "AAL2", FlightNumber: "AA2", AirlineICAO: "AAL", AirlineName: "American Airlines",
			AircraftName: "Boeing 737-800", DistanceKm: 45, DistanceMiles: 28,
			OriginAirport: "LGA", OriginCity: "New York",
			DestinationAirport: "ATL", DestinationCity: "Atlanta",
		},
	}
}

func TestScanFiltersCargoAndPicksDistinctCities(t *testing.T) {
	primary := &fakeAircraft{name: "primary", obs: mixedSky()}
	svc := newTestService(t, []providers.AircraftProvider{primary}, []providers.SpeechProvider{defaultSpeech()})

	result, err := svc.Scan(context.Background(), nycUser, "New York", Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if result.Provider != "primary" {
		t.Errorf("provider = %q, want primary", result.Provider)
	}
	if len(result.Narrations) != 2 {
		t.Fatalf("got %d narrations, want 2", len(result.Narrations))
	}
	if len(result.AudioKeys) != 2 {
		t.Fatalf("got %d audio keys, want 2", len(result.AudioKeys))
	}

	all := result.Narrations[0].Text + " " + result.Narrations[1].Text
	if strings.Contains(all, "FedEx") || strings.Contains(all, "UPS") {
		t.Errorf("cargo operators narrated despite passenger traffic: %q", all)
	}
	if !strings.Contains(all, "London") || !strings.Contains(all, "Atlanta") {
		t.Errorf("expected London and Atlanta narrations, got %q", all)
	}

	cities := []string{result.Narrations[0].Text, result.Narrations[1].Text}
	if strings.Contains(cities[0], "London") == strings.Contains(cities[1], "London") {
		t.Errorf("both slots narrate the same destination: %q", all)
	}
}

func TestScanAlreadyHomeUsesOriginFacts(t *testing.T) {
	primary := &fakeAircraft{name: "primary", obs: []models.AircraftObservation{{
		ICAO24: "dadaee", Callsign: "DAL29", FlightNumber: "DL29", AirlineName: "Delta Air Lines",
		AircraftName: "Boeing 767-300", DistanceKm: 20, DistanceMiles: 12.4,
		OriginAirport: "LHR", OriginCity: "London",
		DestinationAirport: "CVG", DestinationCity: "Hebron",
	}}}
	svc := newTestService(t, []providers.AircraftProvider{primary}, []providers.SpeechProvider{defaultSpeech()})

	result, err := svc.Scan(context.Background(), geo.Point{Lat: 39.05, Lng: -84.66}, "Hebron", Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Narrations) != 1 {
		t.Fatalf("got %d narrations, want 1", len(result.Narrations))
	}

	n := result.Narrations[0]
	if n.FactSource != models.FactSourceOrigin {
		t.Errorf("fact source = %q, want origin", n.FactSource)
	}
	if !strings.Contains(n.Text, "almost home") {
		t.Errorf("missing almost-home sentence: %q", n.Text)
	}
	if !strings.Contains(n.Text, "about London") {
		t.Errorf("fact should be about the origin, got %q", n.Text)
	}
}

func TestScanQuietSkies(t *testing.T) {
	primary := &fakeAircraft{name: "primary", err: fallback.ErrEmpty}
	backup := &fakeAircraft{name: "backup", err: fallback.ErrEmpty}
	svc := newTestService(t, []providers.AircraftProvider{primary, backup}, []providers.SpeechProvider{defaultSpeech()})

	result, err := svc.Scan(context.Background(), nycUser, "New York", Options{})
	if err != nil {
		t.Fatalf("quiet skies should not be an error: %v", err)
	}
	if len(result.Narrations) != 1 {
		t.Fatalf("got %d narrations, want 1", len(result.Narrations))
	}
	if !strings.Contains(result.Narrations[0].Text, "quiet") {
		t.Errorf("unexpected quiet-skies text: %q", result.Narrations[0].Text)
	}
	if len(result.Aircraft) != 0 {
		t.Errorf("expected no aircraft, got %d", len(result.Aircraft))
	}
	if primary.calls != 1 || backup.calls != 1 {
		t.Errorf("both providers should be tried once, got %d and %d", primary.calls, backup.calls)
	}
}

func TestScanFallsBackToSecondaryProvider(t *testing.T) {
	primary := &fakeAircraft{name: "primary", err: errors.New("upstream down")}
	backup := &fakeAircraft{name: "backup", obs: mixedSky()}
	svc := newTestService(t, []providers.AircraftProvider{primary, backup}, []providers.SpeechProvider{defaultSpeech()})

	result, err := svc.Scan(context.Background(), nycUser, "New York", Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Provider != "backup" {
		t.Errorf("provider = %q, want backup", result.Provider)
	}
}

func TestScanAllProvidersDown(t *testing.T) {
	primary := &fakeAircraft{name: "primary", err: errors.New("down")}
	svc := newTestService(t, []providers.AircraftProvider{primary}, []providers.SpeechProvider{defaultSpeech()})

	_, err := svc.Scan(context.Background(), nycUser, "New York", Options{})
	if !errors.Is(err, fallback.ErrNoProviderAvailable) {
		t.Fatalf("err = %v, want ErrNoProviderAvailable", err)
	}
}

func TestSlotAudioGeneratesThenServesCached(t *testing.T) {
	primary := &fakeAircraft{name: "primary", obs: mixedSky()}
	speech := defaultSpeech()
	svc := newTestService(t, []providers.AircraftProvider{primary}, []providers.SpeechProvider{speech})

	audio, hit, err := svc.SlotAudio(context.Background(), nycUser, "New York", 0, Options{})
	if err != nil {
		t.Fatalf("SlotAudio: %v", err)
	}
	if hit {
		t.Error("first request should be a miss")
	}
	if string(audio) != "mp3 bytes" {
		t.Errorf("audio = %q", audio)
	}

	audio, hit, err = svc.SlotAudio(context.Background(), nycUser, "New York", 0, Options{})
	if err != nil {
		t.Fatalf("second SlotAudio: %v", err)
	}
	if !hit {
		t.Error("second request should be a hit")
	}
	if string(audio) != "mp3 bytes" {
		t.Errorf("cached audio = %q", audio)
	}
	if primary.calls != 1 || speech.calls != 1 {
		t.Errorf("cache hit must not re-run the pipeline, got %d fetches and %d syntheses", primary.calls, speech.calls)
	}
}

func TestSlotAudioNoNarrationForSlot(t *testing.T) {
	primary := &fakeAircraft{name: "primary", obs: mixedSky()[2:3]}
	svc := newTestService(t, []providers.AircraftProvider{primary}, []providers.SpeechProvider{defaultSpeech()})

	_, _, err := svc.SlotAudio(context.Background(), nycUser, "New York", 1, Options{})
	if !errors.Is(err, ErrNoNarrationForSlot) {
		t.Fatalf("err = %v, want ErrNoNarrationForSlot", err)
	}
}

func TestSlotAudioOutOfRange(t *testing.T) {
	svc := newTestService(t,
		[]providers.AircraftProvider{&fakeAircraft{name: "primary"}},
		[]providers.SpeechProvider{defaultSpeech()})

	for _, slot := range []int{-1, 5, 99} {
		if _, _, err := svc.SlotAudio(context.Background(), nycUser, "New York", slot, Options{}); !errors.Is(err, ErrSlotOutOfRange) {
			t.Errorf("slot %d: err = %v, want ErrSlotOutOfRange", slot, err)
		}
	}
}

func TestScanUnknownSpeechOverride(t *testing.T) {
	primary := &fakeAircraft{name: "primary", obs: mixedSky()}
	svc := newTestService(t, []providers.AircraftProvider{primary}, []providers.SpeechProvider{defaultSpeech()})

	_, err := svc.Scan(context.Background(), nycUser, "New York", Options{SpeechOverride: "nope"})
	if !errors.Is(err, fallback.ErrUnknownProvider) {
		t.Fatalf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestSpeechOverrideChangesCacheKey(t *testing.T) {
	primary := &fakeAircraft{name: "primary", obs: mixedSky()}
	alt := &fakeSpeech{name: "alt-tts", voice: "alt-voice", audio: []byte("alt")}
	svc := newTestService(t, []providers.AircraftProvider{primary}, []providers.SpeechProvider{defaultSpeech(), alt})

	base, err := svc.AudioKey(nycUser, 0, Options{})
	if err != nil {
		t.Fatalf("AudioKey: %v", err)
	}
	pinned, err := svc.AudioKey(nycUser, 0, Options{SpeechOverride: "alt-tts"})
	if err != nil {
		t.Fatalf("AudioKey pinned: %v", err)
	}
	if base == pinned {
		t.Error("pinning a different voice must change the cache key")
	}
}

func TestSantaOverridesFirstSlot(t *testing.T) {
	primary := &fakeAircraft{name: "primary", obs: mixedSky()}
	svc := newTestService(t, []providers.AircraftProvider{primary}, []providers.SpeechProvider{defaultSpeech()})
	svc.now = func() time.Time { return time.Date(2025, time.December, 24, 20, 0, 0, 0, time.UTC) }

	result, err := svc.Scan(context.Background(), nycUser, "New York", Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !strings.Contains(result.Narrations[0].Text, "reindeer") {
		t.Errorf("first slot should be the seasonal special, got %q", result.Narrations[0].Text)
	}
	if len(result.Narrations) > 1 && strings.Contains(result.Narrations[1].Text, "reindeer") {
		t.Errorf("only the first slot is seasonal, got %q", result.Narrations[1].Text)
	}
}
