// Package providers holds the adapters for every external service the
// scanner talks to: live aircraft data, IP geolocation and text-to-speech.
// Each adapter normalizes its upstream payload into the internal models so
// nothing downstream depends on a particular vendor.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/models"
)

// AircraftProvider finds aircraft inside a bounding box around the listener.
type AircraftProvider interface {
	// Name returns the stable provider identifier used in config, cache
	// keys and analytics.
	Name() string

	// FetchAircraft returns observations inside box, ordered as the
	// upstream returned them. A successful call with nothing airborne
	// returns fallback.ErrEmpty via the chain contract.
	FetchAircraft(ctx context.Context, box geo.BoundingBox, center geo.Point) ([]models.AircraftObservation, error)
}

// SpeechProvider turns narration text into MP3 audio.
type SpeechProvider interface {
	Name() string

	// Voice identifies the configured voice, part of the cache key so a
	// voice change never serves stale audio.
	Voice() string

	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Geolocator resolves a client IP to approximate coordinates.
type Geolocator interface {
	Name() string
	Locate(ctx context.Context, ip string) (*models.GeoLocation, error)
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// decodeJSON reads and decodes a response body, wrapping failures in a
// ProviderError with the raw body attached for debugging.
func decodeJSON(resp *http.Response, result interface{}) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read response body",
			Err:     err,
		}
	}
	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode response",
			Details: string(bodyBytes),
			Err:     err,
		}
	}
	return nil
}

// buildHTTPError creates appropriate error based on status code
func buildHTTPError(statusCode int, endpoint string, body string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: fmt.Sprintf("Authentication failed for endpoint %s", endpoint),
			Details: body,
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: body,
		}
	case http.StatusBadRequest:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: fmt.Sprintf("Bad request to %s", endpoint),
			Details: body,
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeUpstreamError,
			Message: fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Details: body,
		}
	}
}

// handleHTTPError converts non-2xx responses to a ProviderError, consuming
// the body for the error details.
func handleHTTPError(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	return buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
}
