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

// GoogleTTSProvider synthesizes speech via the Cloud Text-to-Speech REST API
// using an API key.
type GoogleTTSProvider struct {
	BaseURL   string
	APIKey    string
	VoiceName string
	Client    *http.Client
}

// NewGoogleTTSProvider creates a Google Cloud TTS provider from the
// environment.
func NewGoogleTTSProvider() *GoogleTTSProvider {
	baseURL := os.Getenv("GOOGLE_TTS_BASE_URL")
	if baseURL == "" {
		baseURL = "https://texttospeech.googleapis.com/v1"
	}
	voiceName := os.Getenv("GOOGLE_TTS_VOICE")
	if voiceName == "" {
		voiceName = "en-US-Neural2-J"
	}

	return &GoogleTTSProvider{
		BaseURL:   baseURL,
		APIKey:    os.Getenv("GOOGLE_TTS_API_KEY"),
		VoiceName: voiceName,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the provider identifier used in config and cache keys.
func (p *GoogleTTSProvider) Name() string {
	return "google"
}

// Voice returns the configured voice identifier.
func (p *GoogleTTSProvider) Voice() string {
	return p.VoiceName
}

// Synthesize converts text to MP3 audio.
func (p *GoogleTTSProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if p.APIKey == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "GOOGLE_TTS_API_KEY environment variable is not set",
		}
	}
	if text == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Text cannot be empty",
		}
	}

	payload := dtos.GoogleTTSRequest{
		Input: dtos.GoogleTTSInput{Text: text},
		Voice: dtos.GoogleTTSVoice{
			LanguageCode: "en-US",
			Name:         p.VoiceName,
		},
		AudioConfig: dtos.GoogleTTSAudioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  1.0,
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

	url := p.BaseURL + "/text:synthesize?key=" + p.APIKey
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
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

	if err := handleHTTPError(resp, "/text:synthesize"); err != nil {
		return nil, err
	}

	var envelope dtos.GoogleTTSResponse
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
