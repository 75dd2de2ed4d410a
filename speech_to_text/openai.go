package speech_to_text

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openAIImpl struct {
	client *openai.Client
	model  string
}

type OpenAIConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint. Used in tests.
	BaseURL string
}

// NewOpenAI returns a transcription engine backed by the OpenAI audio API.
func NewOpenAI(cfg *OpenAIConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("apiKey is empty")
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &openAIImpl{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

func (stt *openAIImpl) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	wavData, err := EncodeWAV(pcm, sampleRate)
	if err != nil {
		return "", err
	}

	resp, err := stt.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    stt.model,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(wavData),
	})
	if err != nil {
		return "", fmt.Errorf("error calling transcription API: %w", err)
	}

	return resp.Text, nil
}
