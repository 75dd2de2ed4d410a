package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"time"

	"voice-assistant/audio"
	"voice-assistant/ring_buffer"
	"voice-assistant/vad"
)

type recorderImpl struct {
	device     audio.Device
	classifier vad.Classifier
	observer   Observer

	sampleRate int
	frameSize  int
	threshold  float64

	// frame-count equivalents of the configured durations
	silenceFrames int
	maxFrames     int
	onsetFrames   int
	maxWaitFrames int
}

type Config struct {
	Device     audio.Device
	Classifier vad.Classifier

	// Observer, if set, is invoked once per frame with diagnostic values.
	// It has no effect on the capture itself.
	Observer Observer

	SampleRate   int
	FrameSize    int
	VADThreshold float64

	// SilenceTimeout ends the utterance after this much continuous silence.
	SilenceTimeout time.Duration

	// MaxDuration truncates the capture regardless of silence, bounding the
	// worst case for stuck-open microphones and continuous noise.
	MaxDuration time.Duration

	// OnsetWindow is how much audio from just before detection is kept, so
	// the first syllable is not clipped by classification latency.
	OnsetWindow time.Duration

	// MaxWait gives up when no speech is heard for this long.
	MaxWait time.Duration
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Device == nil {
		return nil, fmt.Errorf("device is nil")
	}

	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is nil")
	}

	if cfg.SampleRate <= 0 || cfg.FrameSize <= 0 {
		return nil, fmt.Errorf("sample rate and frame size must be positive")
	}

	if cfg.VADThreshold < 0 || cfg.VADThreshold > 1 {
		return nil, fmt.Errorf("vad threshold must be within [0, 1]")
	}

	if cfg.SilenceTimeout <= 0 || cfg.MaxDuration <= 0 || cfg.MaxWait <= 0 {
		return nil, fmt.Errorf("silence timeout, max duration and max wait must be positive")
	}

	framesPerSecond := float64(cfg.SampleRate) / float64(cfg.FrameSize)

	frames := func(d time.Duration) int {
		return int(math.Round(d.Seconds() * framesPerSecond))
	}

	return &recorderImpl{
		device:        cfg.Device,
		classifier:    cfg.Classifier,
		observer:      cfg.Observer,
		sampleRate:    cfg.SampleRate,
		frameSize:     cfg.FrameSize,
		threshold:     cfg.VADThreshold,
		silenceFrames: frames(cfg.SilenceTimeout),
		maxFrames:     frames(cfg.MaxDuration),
		onsetFrames:   frames(cfg.OnsetWindow),
		maxWaitFrames: frames(cfg.MaxWait),
	}, nil
}

func (r *recorderImpl) Record(ctx context.Context) ([]byte, error) {
	// the classifier carries temporal context between frames; clear it on
	// every exit path so the next capture starts fresh
	defer r.classifier.Reset()

	stream, err := r.device.Open(r.sampleRate, r.frameSize)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			log.Printf("error closing audio stream: %v", closeErr)
		}
	}()

	var (
		utterance  bytes.Buffer
		speaking   bool
		silenceRun int
	)

	preBuffer := ring_buffer.New(r.onsetFrames)

	for processed := 0; processed < r.maxFrames; processed++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := stream.Read()
		if err != nil {
			return nil, err
		}

		score, err := r.classifier.Score(frame)
		if err != nil {
			return nil, &ClassifierError{Err: err}
		}

		speech := score > r.threshold

		if r.observer != nil {
			r.observer(processed+1, score, speech, rms(frame))
		}

		switch {
		case speech:
			if !speaking {
				// first positive frame: recover the onset that preceded it
				for _, pre := range preBuffer.Read() {
					writeFrame(&utterance, pre)
				}

				preBuffer.Clear()

				speaking = true
			}

			silenceRun = 0

			writeFrame(&utterance, frame)
		case speaking:
			silenceRun++

			writeFrame(&utterance, frame)

			if silenceRun >= r.silenceFrames {
				return utterance.Bytes(), nil
			}
		default:
			preBuffer.Add(frame)

			if processed+1 >= r.maxWaitFrames {
				// nothing said: a normal empty result
				return nil, nil
			}
		}
	}

	// max duration reached, return what we have even mid-speech
	return utterance.Bytes(), nil
}

func writeFrame(buf *bytes.Buffer, frame []int16) {
	// binary.Write on a bytes.Buffer cannot fail for fixed-size data
	_ = binary.Write(buf, binary.LittleEndian, frame)
}

func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}

	var sum float64

	for _, s := range frame {
		sum += float64(s) * float64(s)
	}

	return math.Sqrt(sum / float64(len(frame)))
}
