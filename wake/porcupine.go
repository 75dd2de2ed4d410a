package wake

import (
	"context"
	"fmt"
	"log"
	"strings"

	porcupine "github.com/Picovoice/porcupine/binding/go/v2"

	"voice-assistant/audio"
)

var builtInKeywords = map[string]porcupine.BuiltInKeyword{
	"alexa":      porcupine.ALEXA,
	"bumblebee":  porcupine.BUMBLEBEE,
	"computer":   porcupine.COMPUTER,
	"jarvis":     porcupine.JARVIS,
	"picovoice":  porcupine.PICOVOICE,
	"porcupine":  porcupine.PORCUPINE,
	"terminator": porcupine.TERMINATOR,
}

type detectorImpl struct {
	engine porcupine.Porcupine
	device audio.Device
}

type Config struct {
	AccessKey string
	Keyword   string
	Device    audio.Device
}

func New(cfg *Config) (*detectorImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.AccessKey == "" {
		return nil, fmt.Errorf("accessKey is empty")
	}

	if cfg.Device == nil {
		return nil, fmt.Errorf("device is nil")
	}

	keyword, ok := builtInKeywords[strings.ToLower(cfg.Keyword)]
	if !ok {
		return nil, fmt.Errorf("unknown wake word: %q", cfg.Keyword)
	}

	engine := porcupine.Porcupine{
		AccessKey:       cfg.AccessKey,
		BuiltInKeywords: []porcupine.BuiltInKeyword{keyword},
	}

	if err := engine.Init(); err != nil {
		return nil, fmt.Errorf("error initializing porcupine: %w", err)
	}

	return &detectorImpl{
		engine: engine,
		device: cfg.Device,
	}, nil
}

// Detect pulls frames from the input device at porcupine's native frame
// length until the keyword fires or the context is cancelled.
func (d *detectorImpl) Detect(ctx context.Context) error {
	stream, err := d.device.Open(porcupine.SampleRate, porcupine.FrameLength)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			log.Printf("error closing audio stream: %v", closeErr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := stream.Read()
		if err != nil {
			return err
		}

		keywordIndex, err := d.engine.Process(frame)
		if err != nil {
			return fmt.Errorf("error processing frame: %w", err)
		}

		if keywordIndex >= 0 {
			return nil
		}
	}
}

// Close releases the wake-word engine.
func (d *detectorImpl) Close() {
	if err := d.engine.Delete(); err != nil {
		log.Printf("error releasing porcupine: %v", err)
	}
}
