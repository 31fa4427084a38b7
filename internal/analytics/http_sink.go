package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/config"
	"dreaming-of-a-jet-plane/scanner/internal/logging"
)

// httpBackend posts events one at a time to a collector endpoint. Failures
// are logged and forgotten.
type httpBackend struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPSink creates a buffered sink delivering to cfg.AnalyticsURL.
func NewHTTPSink(cfg *config.Config) Sink {
	return newBufferedSink(&httpBackend{
		url:   cfg.AnalyticsURL,
		token: cfg.AnalyticsToken,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	})
}

func (b *httpBackend) deliver(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		logging.Debug("Failed to marshal analytics event", "event", event.Name)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", b.url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		logging.Debug("Analytics delivery failed", "event", event.Name, "error", err.Error())
		return
	}
	resp.Body.Close()
}

func (b *httpBackend) close() error {
	return nil
}
