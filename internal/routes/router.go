// Package routes assembles the chi router from the handler set.
package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"dreaming-of-a-jet-plane/scanner/internal/api"
	"dreaming-of-a-jet-plane/scanner/internal/audiocache"
	"dreaming-of-a-jet-plane/scanner/internal/logging"
	"dreaming-of-a-jet-plane/scanner/internal/metrics"
	"dreaming-of-a-jet-plane/scanner/internal/middleware"
)

// RegisterRoutes builds the HTTP router.
func RegisterRoutes(handlers *api.Handlers, store audiocache.Store, metricsReg *metrics.MetricsRegistry, upSince time.Time) http.Handler {

	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Provider-Override", "X-Override-Secret"},
		ExposedHeaders:   []string{"X-Cache", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(store, upSince))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/intro", handlers.IntroHandler)
		r.Get("/scanning", handlers.ScanningHandler)
		r.Get("/scan", handlers.ScanHandler)
		r.Get("/audio/{slot}", handlers.AudioHandler)

		// Free tier replays recorded sessions; it is the only surface that
		// is rate limited per IP.
		r.Route("/free", func(r chi.Router) {
			r.Use(middleware.RateLimitMiddleware)
			r.Get("/session", handlers.FreeSessionHandler)
			r.Get("/audio/{key}", handlers.FreeAudioHandler)
		})
	})

	return r
}
