package speech_to_text

import "log"

// NewWithFallback returns the engine built by local, downgrading to the
// engine built by cloud when local construction fails (missing or corrupt
// model file, typically). cloud may be nil when no fallback is configured,
// in which case the local error is returned as-is.
func NewWithFallback(local, cloud func() (Interface, error)) (Interface, error) {
	engine, err := local()
	if err == nil {
		return engine, nil
	}

	if cloud == nil {
		return nil, err
	}

	log.Printf("error creating local transcription engine, falling back to the cloud provider: %v", err)

	return cloud()
}
