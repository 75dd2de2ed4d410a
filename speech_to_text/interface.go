package speech_to_text

import "context"

type Interface interface {
	// Transcribe converts raw little-endian 16-bit mono PCM into text.
	Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error)
}
