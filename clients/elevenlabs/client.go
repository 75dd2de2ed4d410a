package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModel   = "eleven_turbo_v2_5"

	requestTimeout = 15 * time.Second
)

type clientImpl struct {
	fileSys         afero.Fs
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	voiceID         string
	model           string
	stability       float64
	similarityBoost float64
}

type Config struct {
	FileSys afero.Fs
	APIKey  string
	VoiceID string
	Model   string

	Stability       float64
	SimilarityBoost float64

	// BaseURL overrides the API endpoint. Used in tests.
	BaseURL string
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("apiKey is empty")
	}

	if cfg.VoiceID == "" {
		return nil, fmt.Errorf("voiceID is empty")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	stability := cfg.Stability
	if stability == 0 {
		stability = 0.6
	}

	similarityBoost := cfg.SimilarityBoost
	if similarityBoost == 0 {
		similarityBoost = 0.8
	}

	return &clientImpl{
		fileSys:         cfg.FileSys,
		httpClient:      &http.Client{Timeout: requestTimeout},
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          cfg.APIKey,
		voiceID:         cfg.VoiceID,
		model:           model,
		stability:       stability,
		similarityBoost: similarityBoost,
	}, nil
}

func (c *clientImpl) Synthesize(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarityBoost,
		},
	})
	if err != nil {
		return "", fmt.Errorf("error encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", c.baseURL, c.voiceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling synthesis API: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return "", fmt.Errorf("synthesis API returned %d: %s", resp.StatusCode, body)
	}

	audioFile, err := afero.TempFile(c.fileSys, "", "speech-*.mp3")
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}

	if _, err = io.Copy(audioFile, resp.Body); err != nil {
		audioFile.Close()

		// don't leave a partial file behind
		if removeErr := c.fileSys.Remove(audioFile.Name()); removeErr != nil {
			log.Printf("error removing partial audio file: %v", removeErr)
		}

		return "", fmt.Errorf("error writing audio: %w", err)
	}

	if err = audioFile.Close(); err != nil {
		return "", fmt.Errorf("error closing audio file: %w", err)
	}

	return audioFile.Name(), nil
}
