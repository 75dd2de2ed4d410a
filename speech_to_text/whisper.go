package speech_to_text

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

type whisperImpl struct {
	model whisper.Model
}

type WhisperConfig struct {
	Model whisper.Model
}

// NewWhisper returns a local transcription engine backed by a whisper.cpp
// model. The model stays loaded for the lifetime of the process.
func NewWhisper(cfg *WhisperConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	return &whisperImpl{
		model: cfg.Model,
	}, nil
}

func (stt *whisperImpl) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	// Each transcription gets its own processing context
	whisperCtx, err := stt.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("error creating whisper context: %w", err)
	}

	var cb whisper.SegmentCallback

	if err = whisperCtx.Process(pcmToFloat32(pcm), cb); err != nil {
		return "", fmt.Errorf("error running model: %w", err)
	}

	texts, err := collectSegments(whisperCtx)
	if err != nil {
		return "", err
	}

	return strings.Join(texts, " "), nil
}

func collectSegments(whisperCtx whisper.Context) ([]string, error) {
	seenText := make(map[string]bool)

	texts := make([]string, 0)

	for {
		segment, err := whisperCtx.NextSegment()
		if err == io.EOF {
			return texts, nil
		} else if err != nil {
			return nil, err
		}

		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}

		// bracketed segments are whisper sound annotations, not speech
		if text[0] == '(' || text[0] == '[' || text[len(text)-1] == ')' || text[len(text)-1] == ']' {
			continue
		}

		// whisper sometimes emits the same segment twice on short audio
		if seenText[text] {
			continue
		}

		seenText[text] = true

		texts = append(texts, text)
	}
}
