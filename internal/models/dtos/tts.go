package dtos

// ElevenLabsRequest is the text-to-speech request body for ElevenLabs.
type ElevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings ElevenLabsVoiceSettings `json:"voice_settings"`
}

// ElevenLabsVoiceSettings tunes the ElevenLabs voice.
type ElevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// InworldRequest is the synthesis request body for the Inworld TTS API.
type InworldRequest struct {
	Text        string             `json:"text"`
	VoiceID     string             `json:"voice_id"`
	AudioConfig InworldAudioConfig `json:"audio_config"`
	Temperature float64            `json:"temperature"`
	ModelID     string             `json:"model_id"`
}

// InworldAudioConfig selects the output encoding and pacing.
type InworldAudioConfig struct {
	AudioEncoding string  `json:"audio_encoding"`
	SpeakingRate  float64 `json:"speaking_rate"`
}

// InworldResponse carries base64 encoded audio.
type InworldResponse struct {
	AudioContent string `json:"audioContent"`
}

// GoogleTTSRequest is the request body for the Cloud Text-to-Speech API.
type GoogleTTSRequest struct {
	Input       GoogleTTSInput       `json:"input"`
	Voice       GoogleTTSVoice       `json:"voice"`
	AudioConfig GoogleTTSAudioConfig `json:"audioConfig"`
}

// GoogleTTSInput wraps the text to synthesize.
type GoogleTTSInput struct {
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

// GoogleTTSVoice selects language and voice name.
type GoogleTTSVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

// GoogleTTSAudioConfig selects the output encoding.
type GoogleTTSAudioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate,omitempty"`
}

// GoogleTTSResponse carries base64 encoded audio.
type GoogleTTSResponse struct {
	AudioContent string `json:"audioContent"`
}
