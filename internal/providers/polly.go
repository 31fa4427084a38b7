package providers

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
)

// pollyClient is the slice of the Polly SDK the provider uses; tests inject
// a fake.
type pollyClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyProvider synthesizes speech via Amazon Polly using the default AWS
// credential chain.
type PollyProvider struct {
	VoiceID string
	client  pollyClient
}

// NewPollyProvider creates a Polly provider. Credentials come from the
// default chain (environment variables, instance profiles, IRSA).
func NewPollyProvider(ctx context.Context) (*PollyProvider, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "Failed to load AWS config",
			Err:     err,
		}
	}

	voiceID := os.Getenv("POLLY_VOICE_ID")
	if voiceID == "" {
		voiceID = "Matthew"
	}

	return &PollyProvider{
		VoiceID: voiceID,
		client:  polly.NewFromConfig(cfg),
	}, nil
}

// Name returns the provider identifier used in config and cache keys.
func (p *PollyProvider) Name() string {
	return "polly"
}

// Voice returns the configured voice identifier.
func (p *PollyProvider) Voice() string {
	return p.VoiceID
}

// Synthesize converts text to MP3 audio with the neural engine.
func (p *PollyProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Text cannot be empty",
		}
	}

	out, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(p.VoiceID),
		OutputFormat: types.OutputFormatMp3,
		Engine:       types.EngineNeural,
	})
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeUpstreamError,
			Message: "Polly synthesis failed",
			Err:     err,
		}
	}
	defer out.AudioStream.Close()

	audio, err := io.ReadAll(out.AudioStream)
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
