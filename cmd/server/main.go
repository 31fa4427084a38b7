package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dreaming-of-a-jet-plane/scanner/internal/analytics"
	"dreaming-of-a-jet-plane/scanner/internal/api"
	"dreaming-of-a-jet-plane/scanner/internal/audiocache"
	"dreaming-of-a-jet-plane/scanner/internal/config"
	"dreaming-of-a-jet-plane/scanner/internal/fallback"
	"dreaming-of-a-jet-plane/scanner/internal/freepool"
	"dreaming-of-a-jet-plane/scanner/internal/logging"
	"dreaming-of-a-jet-plane/scanner/internal/metrics"
	"dreaming-of-a-jet-plane/scanner/internal/narration"
	"dreaming-of-a-jet-plane/scanner/internal/providers"
	"dreaming-of-a-jet-plane/scanner/internal/refdata"
	"dreaming-of-a-jet-plane/scanner/internal/routes"
	"dreaming-of-a-jet-plane/scanner/internal/selection"
	"dreaming-of-a-jet-plane/scanner/internal/services"
	"dreaming-of-a-jet-plane/scanner/internal/workers"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}
	if appEnv != "production" {
		// Local convenience only; missing file is fine
		_ = godotenv.Load()
	}

	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Configuration invalid", "error", err.Error())
		log.Fatalf("Configuration invalid: %v", err)
	}

	logging.Info("Sky scanner starting up",
		"environment", appEnv,
		"aircraft_providers", cfg.AircraftProviders,
		"speech_providers", cfg.SpeechProviders,
		"store_backend", cfg.StoreBackend,
	)

	ref, err := refdata.Load()
	if err != nil {
		logging.Error("Failed to load reference data", "error", err.Error())
		log.Fatalf("Failed to load reference data: %v", err)
	}

	metricsReg := metrics.NewMetricsRegistry()

	store, err := buildStore(cfg)
	if err != nil {
		logging.Error("Failed to initialize audio store", "error", err.Error())
		log.Fatalf("Failed to initialize audio store: %v", err)
	}
	defer store.Close()

	sink := buildSink(cfg)
	defer sink.Close()

	aircraftChain := fallback.NewChain("aircraft", buildAircraftProviders(cfg, ref), cfg.ProviderTimeout, cfg.RequestBudget)
	speechChain := fallback.NewChain("speech", buildSpeechProviders(cfg), cfg.ProviderTimeout, cfg.RequestBudget)

	observer := chainObserver(metricsReg, sink)
	aircraftChain.Observe(observer)
	speechChain.Observe(observer)

	cache := audiocache.NewManager(store, cfg.CacheTTL)
	cache.OnLookup(func(hit bool) {
		if hit {
			metricsReg.CacheHitsTotal.Inc()
		} else {
			metricsReg.CacheMissesTotal.Inc()
		}
	})

	var pool *freepool.Pool
	if cfg.FreePoolEnabled {
		pool = freepool.NewPool(store)
	}

	scans := services.NewScanService(
		cfg,
		providers.NewIPAPIProvider(),
		aircraftChain,
		speechChain,
		selection.NewEngine(ref),
		narration.NewResolver(cfg.Units),
		cache,
		sink,
		metricsReg,
	)
	pregen := workers.NewPregenerator(scans, pool, metricsReg, cfg.RequestBudget)
	handlers := api.NewHandlers(cfg, scans, pregen, pool)

	upSince := time.Now()
	router := routes.RegisterRoutes(handlers, store, metricsReg, upSince)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.Port, "environment", appEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed", "error", err.Error())
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logging.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Shutdown incomplete", "error", err.Error())
	}
}

// buildAircraftProviders instantiates the configured providers in fallback
// order.
func buildAircraftProviders(cfg *config.Config, ref *refdata.Store) []providers.AircraftProvider {
	var out []providers.AircraftProvider
	for _, id := range cfg.AircraftProviders {
		switch id {
		case config.AircraftProviderFR24:
			out = append(out, providers.NewFR24Provider(ref))
		case config.AircraftProviderAirlabs:
			out = append(out, providers.NewAirlabsProvider(ref))
		}
	}
	return out
}

// buildSpeechProviders instantiates the configured synthesizers in fallback
// order. Polly needs AWS credentials at startup; when they are absent it is
// skipped so the rest of the chain still serves.
func buildSpeechProviders(cfg *config.Config) []providers.SpeechProvider {
	var out []providers.SpeechProvider
	for _, id := range cfg.SpeechProviders {
		switch id {
		case config.SpeechProviderElevenLabs:
			out = append(out, providers.NewElevenLabsProvider())
		case config.SpeechProviderInworld:
			out = append(out, providers.NewInworldProvider())
		case config.SpeechProviderGoogle:
			out = append(out, providers.NewGoogleTTSProvider())
		case config.SpeechProviderPolly:
			p, err := providers.NewPollyProvider(context.Background())
			if err != nil {
				logging.Warn("Polly unavailable, skipping", "error", err.Error())
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

func buildStore(cfg *config.Config) (audiocache.Store, error) {
	// Backends keep entries a little past the TTL so lazy expiry still sees
	// the creation timestamp.
	retention := 2 * cfg.CacheTTL
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		return audiocache.NewRedisStore(cfg, retention)
	case config.StoreBackendS3:
		return audiocache.NewS3Store(context.Background(), cfg)
	default:
		return audiocache.NewMemoryStore(retention), nil
	}
}

func buildSink(cfg *config.Config) analytics.Sink {
	switch cfg.AnalyticsBackend {
	case config.AnalyticsBackendHTTP:
		return analytics.NewHTTPSink(cfg)
	case config.AnalyticsBackendKafka:
		return analytics.NewKafkaSink(cfg)
	default:
		return analytics.NoopSink{}
	}
}

// chainObserver feeds fallback attempt outcomes into metrics, and reports
// exhausted primaries to analytics so provider health shows up off-box.
func chainObserver(metricsReg *metrics.MetricsRegistry, sink analytics.Sink) fallback.Observer {
	return func(o fallback.Outcome) {
		outcome := "success"
		switch {
		case o.Empty:
			outcome = "empty"
		case !o.Success:
			outcome = "error"
		}
		metricsReg.ProviderAttemptsTotal.WithLabelValues(o.Capability, o.Provider, outcome).Inc()
		metricsReg.ProviderCallDuration.WithLabelValues(o.Capability, o.Provider).Observe(o.Duration.Seconds())

		if !o.Success && o.Rank == 0 {
			sink.Emit("primary_provider_failed", map[string]interface{}{
				"capability": o.Capability,
				"provider":   o.Provider,
				"empty":      o.Empty,
			})
		}
	}
}
