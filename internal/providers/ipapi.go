package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/models"
	"dreaming-of-a-jet-plane/scanner/internal/models/dtos"
)

// IPAPIProvider resolves client IPs via ipapi.co. Lookups are memoized for an
// hour; a listener's IP does not move between scans.
type IPAPIProvider struct {
	BaseURL string
	Client  *http.Client
	memo    *gocache.Cache
}

// NewIPAPIProvider creates an ipapi.co geolocator.
func NewIPAPIProvider() *IPAPIProvider {
	baseURL := os.Getenv("IPAPI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://ipapi.co"
	}

	return &IPAPIProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 5 * time.Second,
		},
		memo: gocache.New(time.Hour, 2*time.Hour),
	}
}

// Name returns the provider identifier.
func (p *IPAPIProvider) Name() string {
	return "ipapi"
}

// Locate resolves ip to approximate coordinates.
func (p *IPAPIProvider) Locate(ctx context.Context, ip string) (*models.GeoLocation, error) {
	if ip == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "IP address cannot be empty",
		}
	}

	if cached, found := p.memo.Get(ip); found {
		loc := cached.(models.GeoLocation)
		return &loc, nil
	}

	endpoint := fmt.Sprintf("/%s/json/", ip)
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

	if err := handleHTTPError(resp, endpoint); err != nil {
		return nil, err
	}

	var payload dtos.IPAPIResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	if payload.Error {
		return nil, &ProviderError{
			Code:    constants.ErrCodeUpstreamError,
			Message: fmt.Sprintf("ipapi.co rejected lookup: %s", payload.Reason),
		}
	}

	loc := models.GeoLocation{
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		City:      payload.City,
		Region:    payload.Region,
		Country:   payload.Country,
		Provider:  p.Name(),
	}
	p.memo.Set(ip, loc, gocache.DefaultExpiration)
	return &loc, nil
}
