package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/models/dtos"
)

// ElevenLabsProvider synthesizes speech via the ElevenLabs API. The response
// body is the MP3 itself, not a JSON envelope.
type ElevenLabsProvider struct {
	BaseURL string
	APIKey  string
	VoiceID string
	Client  *http.Client
}

// NewElevenLabsProvider creates an ElevenLabs provider from the environment.
func NewElevenLabsProvider() *ElevenLabsProvider {
	baseURL := os.Getenv("ELEVENLABS_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io/v1"
	}
	voiceID := os.Getenv("ELEVENLABS_VOICE_ID")
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM" // Rachel
	}

	return &ElevenLabsProvider{
		BaseURL: baseURL,
		APIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		VoiceID: voiceID,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the provider identifier used in config and cache keys.
func (p *ElevenLabsProvider) Name() string {
	return "elevenlabs"
}

// Voice returns the configured voice identifier.
func (p *ElevenLabsProvider) Voice() string {
	return p.VoiceID
}

// Synthesize converts text to MP3 audio.
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if p.APIKey == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "ELEVENLABS_API_KEY environment variable is not set",
		}
	}
	if text == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Text cannot be empty",
		}
	}

	payload := dtos.ElevenLabsRequest{
		Text:    text,
		ModelID: "eleven_turbo_v2_5",
		VoiceSettings: dtos.ElevenLabsVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	endpoint := "/text-to-speech/" + p.VoiceID
	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("xi-api-key", p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

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

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read audio stream",
			Err:     err,
		}
	}
	if len(audio) == 0 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeEmptyResult,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyResult),
		}
	}
	return audio, nil
}
