package api

import (
	"encoding/json"
	"net/http"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/audiocache"
)

// ServiceStatus reports one dependency's health.
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthCheckResponse is the GET /healthCheck payload.
type HealthCheckResponse struct {
	Services map[string]ServiceStatus `json:"services"`
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
}

// HealthCheckHandler handles GET /healthCheck. It probes the audio store with
// a read of a key that never exists; a clean miss proves the backend is
// reachable.
func HealthCheckHandler(store audiocache.Store, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		services := make(map[string]ServiceStatus)

		storeStatus := "ok"
		storeDetails := "Audio store reachable"
		if _, err := store.Read(r.Context(), "healthcheck-probe"); err != nil {
			storeStatus = "down"
			storeDetails = err.Error()
		}
		services["audio_store"] = ServiceStatus{
			Status:  storeStatus,
			Details: storeDetails,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		now := time.Now()
		uptime := now.Sub(upSince).Round(time.Second).String()

		resp := HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
