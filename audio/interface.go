package audio

// Device opens live input streams at a fixed sample rate and frame size.
type Device interface {
	Open(sampleRate, frameSize int) (Stream, error)
}

// Stream is a live audio input delivering fixed-size frames of 16-bit mono
// PCM. Read blocks until a full frame is available and returns a fresh slice
// each call. Close is idempotent and releases the OS device.
type Stream interface {
	Read() ([]int16, error)
	Close() error
}
