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

// Airlabs reports altitude in meters and speed in km/h; observations below
// these thresholds are on the ground or taxiing.
const (
	minAltitudeFt = 1000
	minSpeedKts   = 100
)

// AirlabsProvider fetches live flights from the Airlabs API.
type AirlabsProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	ref     *refdata.Store
}

// NewAirlabsProvider creates an Airlabs provider from the environment.
func NewAirlabsProvider(ref *refdata.Store) *AirlabsProvider {
	baseURL := os.Getenv("AIRLABS_BASE_URL")
	if baseURL == "" {
		baseURL = "https://airlabs.co/api/v9"
	}

	return &AirlabsProvider{
		BaseURL: baseURL,
		APIKey:  os.Getenv("AIRLABS_API_KEY"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		ref: ref,
	}
}

// Name returns the provider identifier used in config and cache keys.
func (p *AirlabsProvider) Name() string {
	return "airlabs"
}

// FetchAircraft returns normalized observations inside box.
func (p *AirlabsProvider) FetchAircraft(ctx context.Context, box geo.BoundingBox, center geo.Point) ([]models.AircraftObservation, error) {
	if p.APIKey == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "AIRLABS_API_KEY environment variable is not set",
		}
	}

	endpoint := fmt.Sprintf("/flights?api_key=%s&bbox=%.4f,%.4f,%.4f,%.4f",
		p.APIKey, box.South, box.West, box.North, box.East)

	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+endpoint, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, "/flights"); err != nil {
		return nil, err
	}

	var payload dtos.AirlabsFlightsResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	// Airlabs embeds errors in 200 responses
	if payload.Error != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeUpstreamError,
			Message: payload.Error.Message,
			Details: payload.Error.Code,
		}
	}

	observations := make([]models.AircraftObservation, 0, len(payload.Response))
	for _, f := range payload.Response {
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

// normalize converts one Airlabs row to the internal shape, reporting false
// for rows that should not be observed at all.
func (p *AirlabsProvider) normalize(f dtos.AirlabsFlight, center geo.Point) (models.AircraftObservation, bool) {
	var zero models.AircraftObservation

	if f.Lat == nil || f.Lng == nil {
		return zero, false
	}
	if f.Status != "" && f.Status != "en-route" {
		return zero, false
	}
	if ignoredOperators[f.AirlineICAO] {
		return zero, false
	}

	// Meters to feet, km/h to knots
	altitudeFt := 0
	if f.Alt != nil {
		altitudeFt = int(*f.Alt * 3.28084)
	}
	speedKts := 0
	if f.Speed != nil {
		speedKts = int(*f.Speed * 0.539957)
	}
	if altitudeFt < minAltitudeFt || speedKts < minSpeedKts {
		return zero, false
	}

	flightNumber := f.FlightIATA
	if flightNumber == "" {
		flightNumber = f.FlightNumber
	}

	obs := models.AircraftObservation{
		ICAO24:             strings.ToLower(f.Hex),
		Callsign:           f.FlightICAO,
		FlightNumber:       flightNumber,
		AirlineICAO:        f.AirlineICAO,
		AircraftICAO:       f.AircraftICAO,
		Registration:       f.RegNumber,
		OriginAirport:      f.DepIATA,
		DestinationAirport: f.ArrIATA,
		Latitude:           *f.Lat,
		Longitude:          *f.Lng,
		AltitudeFt:         altitudeFt,
		SpeedKts:           speedKts,
		ETA:                f.ArrTime,
		Provider:           p.Name(),
	}
	if f.Dir != nil {
		obs.HeadingDeg = *f.Dir
	}

	enrichObservation(p.ref, &obs, center)
	if !routePlausible(p.ref, &obs) {
		return zero, false
	}
	return obs, true
}
