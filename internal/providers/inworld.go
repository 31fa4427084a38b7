package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
	"dreaming-of-a-jet-plane/scanner/internal/models/dtos"
)

// InworldProvider synthesizes speech via the Inworld TTS API. Audio comes
// back base64 encoded inside a JSON envelope.
type InworldProvider struct {
	BaseURL string
	APIKey  string
	VoiceID string
	Client  *http.Client
}

// NewInworldProvider creates an Inworld provider from the environment.
func NewInworldProvider() *InworldProvider {
	baseURL := os.Getenv("INWORLD_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.inworld.ai/tts/v1"
	}
	voiceID := os.Getenv("INWORLD_VOICE_ID")
	if voiceID == "" {
		voiceID = "Dennis"
	}

	return &InworldProvider{
		BaseURL: baseURL,
		APIKey:  os.Getenv("INWORLD_API_KEY"),
		VoiceID: voiceID,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the provider identifier used in config and cache keys.
func (p *InworldProvider) Name() string {
	return "inworld"
}

// Voice returns the configured voice identifier.
func (p *InworldProvider) Voice() string {
	return p.VoiceID
}

// Synthesize converts text to MP3 audio.
func (p *InworldProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if p.APIKey == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "INWORLD_API_KEY environment variable is not set",
		}
	}
	if text == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Text cannot be empty",
		}
	}

	payload := dtos.InworldRequest{
		Text:    text,
		VoiceID: p.VoiceID,
		AudioConfig: dtos.InworldAudioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  1.0,
		},
		Temperature: 0.8,
		ModelID:     "inworld-tts-1",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+"/voice", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Basic "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, "/voice"); err != nil {
		return nil, err
	}

	var envelope dtos.InworldResponse
	if err := decodeJSON(resp, &envelope); err != nil {
		return nil, err
	}
	if envelope.AudioContent == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeEmptyResult,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyResult),
		}
	}

	audio, err := base64.StdEncoding.DecodeString(envelope.AudioContent)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode base64 audio",
			Err:     err,
		}
	}
	return audio, nil
}
