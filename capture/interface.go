package capture

import "context"

// Interface captures one utterance from the microphone.
type Interface interface {
	// Record blocks until an utterance has been captured and returns its raw
	// little-endian 16-bit mono PCM bytes. It returns an empty slice when no
	// speech was heard within the configured wait window; that is a normal
	// outcome, not an error. The context is checked once per frame, before
	// each blocking read.
	Record(ctx context.Context) ([]byte, error)
}
