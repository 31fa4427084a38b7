// Package config resolves all environment configuration at process start.
// Provider identifiers are a closed enumeration: unknown names fail the load
// instead of failing the first request that hits them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
)

// AircraftProviderID identifies a live aircraft data source.
type AircraftProviderID string

const (
	AircraftProviderFR24    AircraftProviderID = "fr24"
	AircraftProviderAirlabs AircraftProviderID = "airlabs"
)

// SpeechProviderID identifies a text-to-speech source.
type SpeechProviderID string

const (
	SpeechProviderElevenLabs SpeechProviderID = "elevenlabs"
	SpeechProviderPolly      SpeechProviderID = "polly"
	SpeechProviderGoogle     SpeechProviderID = "google"
	SpeechProviderInworld    SpeechProviderID = "inworld"
)

// StoreBackend selects where audio artifacts live.
type StoreBackend string

const (
	StoreBackendMemory StoreBackend = "memory"
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendS3     StoreBackend = "s3"
)

// AnalyticsBackend selects the event sink.
type AnalyticsBackend string

const (
	AnalyticsBackendNone  AnalyticsBackend = "none"
	AnalyticsBackendHTTP  AnalyticsBackend = "http"
	AnalyticsBackendKafka AnalyticsBackend = "kafka"
)

// Units selects narration formatting, never control flow.
type Units string

const (
	UnitsImperial Units = "imperial"
	UnitsMetric   Units = "metric"
)

// Config is the resolved process configuration.
type Config struct {
	AppEnv string
	Port   string

	AircraftProviders []AircraftProviderID
	SpeechProviders   []SpeechProviderID

	// OverrideSecret authenticates per-request provider pinning. Empty
	// disables the override mechanism entirely.
	OverrideSecret string

	ScanRadiusKm    float64
	Slots           int
	Units           Units
	CacheTTL        time.Duration
	ProviderTimeout time.Duration
	RequestBudget   time.Duration

	StoreBackend StoreBackend

	RedisHost     string
	RedisPort     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	AnalyticsBackend AnalyticsBackend
	AnalyticsURL     string
	AnalyticsToken   string
	KafkaBroker      string
	KafkaTopic       string

	FreePoolEnabled bool
}

// Load reads and validates configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		OverrideSecret:  os.Getenv("PROVIDER_OVERRIDE_SECRET"),
		ScanRadiusKm:    getEnvFloat("SCAN_RADIUS_KM", constants.DefaultScanRadiusKm),
		Slots:           getEnvInt("SCAN_SLOTS", constants.DefaultSlots),
		CacheTTL:        getEnvDuration("AUDIO_CACHE_TTL", constants.DefaultCacheTTL),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		RequestBudget:   getEnvDuration("REQUEST_BUDGET", 45*time.Second),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		MinioEndpoint:   os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:  os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:     os.Getenv("MINIO_USE_SSL") == "true",
		MinioBucket:     getEnv("MINIO_BUCKET", "jet-plane-audio"),
		AnalyticsURL:    os.Getenv("ANALYTICS_URL"),
		AnalyticsToken:  os.Getenv("ANALYTICS_TOKEN"),
		KafkaBroker:     os.Getenv("KAFKA_BROKER"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "scanner-events"),
		FreePoolEnabled: getEnv("FREE_POOL_ENABLED", "true") == "true",
	}

	if cfg.Slots < 1 || cfg.Slots > constants.MaxSlots {
		return nil, fmt.Errorf("SCAN_SLOTS must be between 1 and %d, got %d", constants.MaxSlots, cfg.Slots)
	}

	aircraft, err := ParseAircraftProviders(getEnv("AIRCRAFT_PROVIDERS", "fr24,airlabs"))
	if err != nil {
		return nil, err
	}
	cfg.AircraftProviders = aircraft

	speech, err := ParseSpeechProviders(getEnv("SPEECH_PROVIDERS", "inworld,elevenlabs,polly,google"))
	if err != nil {
		return nil, err
	}
	cfg.SpeechProviders = speech

	units := Units(getEnv("NARRATION_UNITS", string(UnitsImperial)))
	if units != UnitsImperial && units != UnitsMetric {
		return nil, fmt.Errorf("NARRATION_UNITS must be imperial or metric, got %q", units)
	}
	cfg.Units = units

	backend := StoreBackend(getEnv("AUDIO_STORE_BACKEND", string(StoreBackendMemory)))
	switch backend {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendS3:
		cfg.StoreBackend = backend
	default:
		return nil, fmt.Errorf("AUDIO_STORE_BACKEND must be memory, redis or s3, got %q", backend)
	}

	analytics := AnalyticsBackend(getEnv("ANALYTICS_BACKEND", string(AnalyticsBackendNone)))
	switch analytics {
	case AnalyticsBackendNone, AnalyticsBackendHTTP, AnalyticsBackendKafka:
		cfg.AnalyticsBackend = analytics
	default:
		return nil, fmt.Errorf("ANALYTICS_BACKEND must be none, http or kafka, got %q", analytics)
	}

	return cfg, nil
}

// ParseAircraftProviders resolves a comma separated provider list into the
// closed enumeration, preserving order.
func ParseAircraftProviders(raw string) ([]AircraftProviderID, error) {
	var out []AircraftProviderID
	for _, name := range splitList(raw) {
		switch AircraftProviderID(name) {
		case AircraftProviderFR24, AircraftProviderAirlabs:
			out = append(out, AircraftProviderID(name))
		default:
			return nil, fmt.Errorf("unknown aircraft provider %q", name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("AIRCRAFT_PROVIDERS resolved to an empty list")
	}
	return out, nil
}

// ParseSpeechProviders resolves a comma separated provider list into the
// closed enumeration, preserving order.
func ParseSpeechProviders(raw string) ([]SpeechProviderID, error) {
	var out []SpeechProviderID
	for _, name := range splitList(raw) {
		switch SpeechProviderID(name) {
		case SpeechProviderElevenLabs, SpeechProviderPolly, SpeechProviderGoogle, SpeechProviderInworld:
			out = append(out, SpeechProviderID(name))
		default:
			return nil, fmt.Errorf("unknown speech provider %q", name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("SPEECH_PROVIDERS resolved to an empty list")
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
