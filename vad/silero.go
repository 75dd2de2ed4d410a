package vad

import (
	"fmt"

	"github.com/streamer45/silero-vad-go/speech"
)

// SileroConfig configures the Silero ONNX detector.
type SileroConfig struct {
	ModelPath  string
	SampleRate int
	Threshold  float32
}

// sileroImpl adapts the streaming Silero detector to the Classifier contract.
// The detector reports start/end events; between a start and the matching end
// every frame is scored 1, otherwise 0.
type sileroImpl struct {
	detector *speech.Detector
	active   bool
}

func NewSilero(cfg *SileroConfig) (*sileroImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("modelPath is empty")
	}

	detector, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:  cfg.ModelPath,
		SampleRate: cfg.SampleRate,
		Threshold:  cfg.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating silero detector: %w", err)
	}

	return &sileroImpl{
		detector: detector,
	}, nil
}

func (c *sileroImpl) Score(frame []int16) (float64, error) {
	samples := make([]float32, len(frame))
	for i, s := range frame {
		samples[i] = float32(s) / 32768.0
	}

	event, err := c.detector.DetectStreamFrame(samples)
	if err != nil {
		return 0, fmt.Errorf("error detecting speech: %w", err)
	}

	if event != nil {
		if event.IsStart {
			c.active = true
		}

		if event.IsEnd {
			c.active = false
		}
	}

	if c.active {
		return 1, nil
	}

	return 0, nil
}

func (c *sileroImpl) Reset() {
	c.active = false
	c.detector.Reset()
}

// Close releases the ONNX session. The classifier must not be used afterwards.
func (c *sileroImpl) Close() {
	c.detector.Destroy()
}
