package constants

// Provider error codes shared by all external adapters
const (
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeInvalidAPIKey     = "INVALID_API_KEY"
	ErrCodeNotConfigured     = "NOT_CONFIGURED"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeUpstreamError     = "UPSTREAM_ERROR"
	ErrCodeEmptyResult       = "EMPTY_RESULT"
	ErrCodeRateLimited       = "RATE_LIMITED"
)

var errorMessages = map[string]string{
	ErrCodeNetworkError:      "Failed to reach the provider",
	ErrCodeTimeout:           "Provider request timed out",
	ErrCodeInvalidAPIKey:     "Provider API key is missing or invalid",
	ErrCodeNotConfigured:     "Provider is not configured",
	ErrCodeInvalidDataFormat: "Provider returned data in an unexpected format",
	ErrCodeUpstreamError:     "Provider returned an error response",
	ErrCodeEmptyResult:       "Provider returned no data",
	ErrCodeRateLimited:       "Provider rate limit exceeded",
}

// GetErrorMessage returns the human readable message for an error code
func GetErrorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Unknown provider error"
}
