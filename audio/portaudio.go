package audio

import (
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var (
	initOnce    sync.Once
	initErr     error
	initialized bool
)

// Terminate releases PortAudio. Call it once at process shutdown, after all
// streams are closed; Open does not re-initialize afterwards.
func Terminate() {
	if !initialized {
		return
	}

	initialized = false

	if err := portaudio.Terminate(); err != nil {
		log.Printf("error terminating portaudio: %v", err)
	}
}

type portAudioDevice struct{}

// NewPortAudioDevice returns a Device backed by the default PortAudio input.
// PortAudio itself is initialized lazily on the first Open.
func NewPortAudioDevice() Device {
	return &portAudioDevice{}
}

func (d *portAudioDevice) Open(sampleRate, frameSize int) (Stream, error) {
	initOnce.Do(func() {
		initErr = portaudio.Initialize()
		initialized = initErr == nil
	})
	if initErr != nil {
		return nil, &DeviceError{Op: "init", Err: initErr}
	}

	in := make([]int16, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(in), in)
	if err != nil {
		return nil, &DeviceError{Op: "open", Err: err}
	}

	err = stream.Start()
	if err != nil {
		if closeErr := stream.Close(); closeErr != nil {
			log.Printf("error closing stream after failed start: %v", closeErr)
		}

		return nil, &DeviceError{Op: "start", Err: err}
	}

	return &portAudioStream{
		stream: stream,
		in:     in,
	}, nil
}

type portAudioStream struct {
	stream *portaudio.Stream
	in     []int16
	closed bool
}

func (s *portAudioStream) Read() ([]int16, error) {
	err := s.stream.Read()
	if err != nil {
		return nil, &DeviceError{Op: "read", Err: err}
	}

	// portaudio refills the same backing buffer on every read
	frame := make([]int16, len(s.in))
	copy(frame, s.in)

	return frame, nil
}

func (s *portAudioStream) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	if err := s.stream.Stop(); err != nil {
		log.Printf("error stopping stream: %v", err)
	}

	if err := s.stream.Close(); err != nil {
		return &DeviceError{Op: "close", Err: err}
	}

	return nil
}
