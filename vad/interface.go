package vad

// Classifier scores a single audio frame for speech. Implementations may hold
// temporal context across frames; Reset clears it so the next capture starts
// fresh. Callers must serialize Score/Reset — no concurrent use.
type Classifier interface {
	// Score returns a speech probability in [0, 1] for one frame of 16-bit
	// mono PCM samples.
	Score(frame []int16) (float64, error)

	// Reset clears any temporal state. Callable any number of times.
	Reset()
}
