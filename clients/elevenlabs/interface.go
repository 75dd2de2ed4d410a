package elevenlabs

import "context"

// Interface turns text into an audio file ready for playback.
type Interface interface {
	// Synthesize returns the path of a temporary audio file containing the
	// spoken text. The caller removes the file after playback.
	Synthesize(ctx context.Context, text string) (string, error)
}
