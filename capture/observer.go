package capture

import "log"

// Observer receives per-frame diagnostics: the 1-based frame index, the
// classifier score, the thresholded decision, and the frame's RMS level.
type Observer func(frame int, score float64, speech bool, rms float64)

// LogObserver returns an Observer that logs the first few frames and then
// every nth frame, to make capture behavior visible without flooding output.
func LogObserver(every int) Observer {
	if every <= 0 {
		every = 30
	}

	return func(frame int, score float64, speech bool, rms float64) {
		if frame <= 3 || frame%every == 0 {
			log.Printf("frame=%d speech=%t score=%.2f rms=%.0f", frame, speech, score, rms)
		}
	}
}
