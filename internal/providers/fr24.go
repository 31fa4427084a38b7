package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/fallback"
	"dreaming-of-a-jet-plane/scanner/internal/geo"
	"dreaming-of-a-jet-plane/scanner/internal/models"
	"dreaming-of-a-jet-plane/scanner/internal/models/dtos"
	"dreaming-of-a-jet-plane/scanner/internal/refdata"
)

// FR24Provider fetches live positions from the FlightRadar24 API.
type FR24Provider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	ref     *refdata.Store
}

// NewFR24Provider creates a FlightRadar24 provider from the environment.
func NewFR24Provider(ref *refdata.Store) *FR24Provider {
	baseURL := os.Getenv("FR24_BASE_URL")
	if baseURL == "" {
		baseURL = "https://fr24api.flightradar24.com/api"
	}

	return &FR24Provider{
		BaseURL: baseURL,
		APIKey:  os.Getenv("FR24_API_KEY"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		ref: ref,
	}
}

// Name returns the provider identifier used in config and cache keys.
func (p *FR24Provider) Name() string {
	return "fr24"
}

// FetchAircraft returns normalized observations inside box.
func (p *FR24Provider) FetchAircraft(ctx context.Context, box geo.BoundingBox, center geo.Point) ([]models.AircraftObservation, error) {
	if p.APIKey == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "FR24_API_KEY environment variable is not set",
		}
	}

	// FR24 bounds order is north,south,west,east
	endpoint := fmt.Sprintf("/live/flight-positions/full?bounds=%.3f,%.3f,%.3f,%.3f",
		box.North, box.South, box.West, box.East)

	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+endpoint, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, "/live/flight-positions/full"); err != nil {
		return nil, err
	}

	var payload dtos.FR24PositionsResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	observations := make([]models.AircraftObservation, 0, len(payload.Data))
	for _, f := range payload.Data {
		obs, ok := p.normalize(f, center)
		if !ok {
			continue
		}
		observations = append(observations, obs)
	}

	if len(observations) == 0 {
		return nil, fallback.ErrEmpty
	}
	return observations, nil
}

// normalize converts one FR24 row to the internal shape. FR24 already
// reports feet and knots, so only the ground filter applies.
func (p *FR24Provider) normalize(f dtos.FR24Flight, center geo.Point) (models.AircraftObservation, bool) {
	var zero models.AircraftObservation

	if f.Lat == nil || f.Lon == nil {
		return zero, false
	}
	if ignoredOperators[f.PaintedAs] {
		return zero, false
	}
	if int(f.Alt) < minAltitudeFt || int(f.GSpeed) < minSpeedKts {
		return zero, false
	}

	obs := models.AircraftObservation{
		ICAO24:             strings.ToLower(f.Hex),
		Callsign:           f.Callsign,
		FlightNumber:       f.Flight,
		AirlineICAO:        f.PaintedAs,
		AircraftICAO:       f.Type,
		Registration:       f.Reg,
		OriginAirport:      f.OrigIATA,
		DestinationAirport: f.DestIATA,
		Latitude:           *f.Lat,
		Longitude:          *f.Lon,
		AltitudeFt:         int(f.Alt),
		SpeedKts:           int(f.GSpeed),
		HeadingDeg:         f.Track,
		ETA:                f.ETA,
		Provider:           p.Name(),
	}

	enrichObservation(p.ref, &obs, center)
	if !routePlausible(p.ref, &obs) {
		return zero, false
	}
	return obs, true
}
