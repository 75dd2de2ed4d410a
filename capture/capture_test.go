package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"voice-assistant/audio"
)

type scriptedStream struct {
	frames [][]int16
	pos    int
	errAt  int // 1-based frame index at which Read fails; 0 = never
	closes int
}

func (s *scriptedStream) Read() ([]int16, error) {
	s.pos++

	if s.errAt != 0 && s.pos >= s.errAt {
		return nil, &audio.DeviceError{Op: "read", Err: errors.New("overflow")}
	}

	if s.pos <= len(s.frames) {
		return s.frames[s.pos-1], nil
	}

	return make([]int16, 4), nil
}

func (s *scriptedStream) Close() error {
	s.closes++

	return nil
}

type scriptedDevice struct {
	stream  *scriptedStream
	openErr error
}

func (d *scriptedDevice) Open(sampleRate, frameSize int) (audio.Stream, error) {
	if d.openErr != nil {
		return nil, &audio.DeviceError{Op: "open", Err: d.openErr}
	}

	return d.stream, nil
}

type scriptedClassifier struct {
	scores []float64
	pos    int
	errAt  int
	resets int
}

func (c *scriptedClassifier) Score(frame []int16) (float64, error) {
	c.pos++

	if c.errAt != 0 && c.pos >= c.errAt {
		return 0, errors.New("inference failed")
	}

	if c.pos <= len(c.scores) {
		return c.scores[c.pos-1], nil
	}

	return 0.1, nil
}

func (c *scriptedClassifier) Reset() {
	c.resets++
}

// numberedFrames returns n distinct frames so buffer contents can be matched
// against exact frame indices.
func numberedFrames(n int) [][]int16 {
	frames := make([][]int16, n)
	for i := range frames {
		frames[i] = []int16{int16(i), int16(i), int16(i), int16(i)}
	}

	return frames
}

func repeat(score float64, n int) []float64 {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = score
	}

	return scores
}

func pcm(t *testing.T, frames [][]int16) []byte {
	t.Helper()

	var buf bytes.Buffer

	for _, frame := range frames {
		if err := binary.Write(&buf, binary.LittleEndian, frame); err != nil {
			t.Fatalf("error encoding frame: %v", err)
		}
	}

	return buf.Bytes()
}

// testConfig yields 31.25 frames/s: silence timeout 1.5s = 47 frames, onset
// window 0.5s = 16 frames, max wait 5s = 156 frames.
func testConfig(device audio.Device, classifier *scriptedClassifier) *Config {
	return &Config{
		Device:         device,
		Classifier:     classifier,
		SampleRate:     16000,
		FrameSize:      512,
		VADThreshold:   0.5,
		SilenceTimeout: 1500 * time.Millisecond,
		MaxDuration:    30 * time.Second,
		OnsetWindow:    500 * time.Millisecond,
		MaxWait:        5 * time.Second,
	}
}

func TestRecord_NoSpeechReturnsEmpty(t *testing.T) {
	stream := &scriptedStream{frames: numberedFrames(200)}
	classifier := &scriptedClassifier{scores: repeat(0.1, 200)}

	recorder, err := New(testConfig(&scriptedDevice{stream: stream}, classifier))
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	result, err := recorder.Record(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 0 {
		t.Errorf("expected empty result, got %d bytes", len(result))
	}

	if stream.pos != 156 {
		t.Errorf("expected exactly 156 frames consumed before giving up, got %d", stream.pos)
	}

	if stream.closes != 1 {
		t.Errorf("expected stream closed exactly once, got %d", stream.closes)
	}

	if classifier.resets != 1 {
		t.Errorf("expected classifier reset exactly once, got %d", classifier.resets)
	}
}

func TestRecord_OnsetRecoveryAndSilenceTimeout(t *testing.T) {
	// 20 quiet frames, 10 speech frames, then 47 silence frames. The result
	// must start with the 16 pre-buffered frames immediately preceding the
	// first speech frame, in original order.
	frames := numberedFrames(90)
	scores := append(append(repeat(0.1, 20), repeat(0.9, 10)...), repeat(0.1, 47)...)

	stream := &scriptedStream{frames: frames}
	classifier := &scriptedClassifier{scores: scores}

	recorder, err := New(testConfig(&scriptedDevice{stream: stream}, classifier))
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	result, err := recorder.Record(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := pcm(t, frames[4:77]) // frames 4..19 onset, 20..29 speech, 30..76 silence

	if len(result) != len(expected) {
		t.Fatalf("expected %d frames, got %d bytes vs %d bytes",
			73, len(result), len(expected))
	}

	if !bytes.Equal(result, expected) {
		t.Errorf("captured buffer does not match expected frame sequence")
	}

	if stream.pos != 77 {
		t.Errorf("expected capture to end exactly when the silence run hit 47, consumed %d frames", stream.pos)
	}

	if stream.closes != 1 {
		t.Errorf("expected stream closed exactly once, got %d", stream.closes)
	}

	if classifier.resets != 1 {
		t.Errorf("expected classifier reset exactly once, got %d", classifier.resets)
	}
}

func TestRecord_ShortOnsetNotPadded(t *testing.T) {
	// speech starts at frame 4: only the 3 preceding frames exist, so the
	// pre-buffer must contribute exactly those, not a full window
	frames := numberedFrames(60)
	scores := append(append(repeat(0.1, 3), 0.9), repeat(0.1, 47)...)

	stream := &scriptedStream{frames: frames}
	classifier := &scriptedClassifier{scores: scores}

	recorder, err := New(testConfig(&scriptedDevice{stream: stream}, classifier))
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	result, err := recorder.Record(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := pcm(t, frames[0:51]) // 3 onset + 1 speech + 47 silence

	if !bytes.Equal(result, expected) {
		t.Errorf("expected frames 0..50 in order, got %d bytes (want %d)", len(result), len(expected))
	}
}

func TestRecord_SilenceRunResetsOnSpeech(t *testing.T) {
	// a silence run shorter than the timeout must not end the capture once
	// speech resumes
	frames := numberedFrames(120)
	scores := append(append(append(repeat(0.1, 2), 0.9), repeat(0.1, 46)...), 0.9) // run of 46 < 47, then speech again
	scores = append(scores, repeat(0.1, 47)...)

	stream := &scriptedStream{frames: frames}
	classifier := &scriptedClassifier{scores: scores}

	recorder, err := New(testConfig(&scriptedDevice{stream: stream}, classifier))
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	result, err := recorder.Record(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 onset + 1 speech + 46 silence + 1 speech + 47 silence
	expected := pcm(t, frames[0:97])

	if !bytes.Equal(result, expected) {
		t.Errorf("expected 97 frames captured, got %d bytes (want %d)", len(result), len(expected))
	}

	if stream.pos != 97 {
		t.Errorf("expected 97 frames consumed, got %d", stream.pos)
	}
}

func TestRecord_TruncatesAtMaxDuration(t *testing.T) {
	stream := &scriptedStream{frames: numberedFrames(100)}
	classifier := &scriptedClassifier{scores: repeat(0.9, 100)}

	cfg := testConfig(&scriptedDevice{stream: stream}, classifier)
	cfg.MaxDuration = 640 * time.Millisecond // 20 frames

	recorder, err := New(cfg)
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	result, err := recorder.Record(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stream.pos > 21 {
		t.Errorf("consumed %d frames, exceeding the truncation bound", stream.pos)
	}

	expected := pcm(t, stream.frames[0:20])

	if !bytes.Equal(result, expected) {
		t.Errorf("expected 20 speech frames, got %d bytes (want %d)", len(result), len(expected))
	}

	if classifier.resets != 1 {
		t.Errorf("expected classifier reset exactly once, got %d", classifier.resets)
	}
}

func TestRecord_DeviceOpenFailure(t *testing.T) {
	classifier := &scriptedClassifier{}

	recorder, err := New(testConfig(&scriptedDevice{openErr: errors.New("device busy")}, classifier))
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	_, err = recorder.Record(context.Background())

	var devErr *audio.DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}

	if classifier.resets != 1 {
		t.Errorf("expected classifier reset exactly once even on open failure, got %d", classifier.resets)
	}
}

func TestRecord_ReadFailureMidCapture(t *testing.T) {
	stream := &scriptedStream{frames: numberedFrames(10), errAt: 5}
	classifier := &scriptedClassifier{scores: repeat(0.9, 10)}

	recorder, err := New(testConfig(&scriptedDevice{stream: stream}, classifier))
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	_, err = recorder.Record(context.Background())

	var devErr *audio.DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}

	if stream.closes != 1 {
		t.Errorf("expected stream closed exactly once, got %d", stream.closes)
	}

	if classifier.resets != 1 {
		t.Errorf("expected classifier reset exactly once, got %d", classifier.resets)
	}
}

func TestRecord_ClassifierFailure(t *testing.T) {
	stream := &scriptedStream{frames: numberedFrames(10)}
	classifier := &scriptedClassifier{errAt: 3}

	recorder, err := New(testConfig(&scriptedDevice{stream: stream}, classifier))
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	_, err = recorder.Record(context.Background())

	var clsErr *ClassifierError
	if !errors.As(err, &clsErr) {
		t.Fatalf("expected ClassifierError, got %v", err)
	}

	if stream.closes != 1 {
		t.Errorf("expected stream closed exactly once, got %d", stream.closes)
	}

	if classifier.resets != 1 {
		t.Errorf("expected classifier reset exactly once, got %d", classifier.resets)
	}
}

func TestRecord_ContextCancellation(t *testing.T) {
	stream := &scriptedStream{frames: numberedFrames(10)}
	classifier := &scriptedClassifier{scores: repeat(0.1, 10)}

	recorder, err := New(testConfig(&scriptedDevice{stream: stream}, classifier))
	if err != nil {
		t.Fatalf("error creating recorder: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = recorder.Record(ctx)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if stream.pos != 0 {
		t.Errorf("expected no frames read after cancellation, got %d", stream.pos)
	}

	if stream.closes != 1 {
		t.Errorf("expected stream closed exactly once, got %d", stream.closes)
	}

	if classifier.resets != 1 {
		t.Errorf("expected classifier reset exactly once, got %d", classifier.resets)
	}
}

func TestNew_Validation(t *testing.T) {
	stream := &scriptedStream{}
	device := &scriptedDevice{stream: stream}
	classifier := &scriptedClassifier{}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"nil device", func(c *Config) { c.Device = nil }},
		{"nil classifier", func(c *Config) { c.Classifier = nil }},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero frame size", func(c *Config) { c.FrameSize = 0 }},
		{"threshold above one", func(c *Config) { c.VADThreshold = 1.5 }},
		{"zero silence timeout", func(c *Config) { c.SilenceTimeout = 0 }},
		{"zero max duration", func(c *Config) { c.MaxDuration = 0 }},
		{"zero max wait", func(c *Config) { c.MaxWait = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(device, classifier)
			tt.modify(cfg)

			if _, err := New(cfg); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}

	if _, err := New(nil); err == nil {
		t.Errorf("expected error for nil config")
	}
}
