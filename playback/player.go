package playback

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Supported playback backends. "auto" picks one for the current platform.
const (
	BackendAuto   = "auto"
	BackendAfplay = "afplay"
	BackendAplay  = "aplay"
	BackendFfplay = "ffplay"
)

// Interface plays an audio file through the system output, blocking until
// playback finishes.
type Interface interface {
	Play(path string) error
}

type playerImpl struct {
	backend string
}

type Config struct {
	Backend string
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	backend, err := resolveBackend(cfg.Backend, runtime.GOOS, exec.LookPath)
	if err != nil {
		return nil, err
	}

	return &playerImpl{
		backend: backend,
	}, nil
}

// resolveBackend maps "auto" to a platform-appropriate player and validates
// explicit choices. lookPath is injected for tests.
func resolveBackend(backend, goos string, lookPath func(string) (string, error)) (string, error) {
	switch backend {
	case "", BackendAuto:
	case BackendAfplay, BackendAplay, BackendFfplay:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown playback backend: %q", backend)
	}

	switch goos {
	case "darwin":
		return BackendAfplay, nil
	case "linux":
		if _, err := lookPath(BackendAplay); err == nil {
			return BackendAplay, nil
		}

		return BackendFfplay, nil
	default:
		return BackendFfplay, nil
	}
}

func (p *playerImpl) Play(path string) error {
	var cmd *exec.Cmd

	switch p.backend {
	case BackendAfplay:
		cmd = exec.Command("afplay", path)
	case BackendAplay:
		// aplay only understands WAV; hand anything else to ffplay
		if !strings.HasSuffix(strings.ToLower(path), ".wav") {
			cmd = ffplayCommand(path)
		} else {
			cmd = exec.Command("aplay", "-q", path)
		}
	case BackendFfplay:
		cmd = ffplayCommand(path)
	default:
		return fmt.Errorf("unknown playback backend: %q", p.backend)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("error playing %s with %s: %w", path, p.backend, err)
	}

	return nil
}

func ffplayCommand(path string) *exec.Cmd {
	return exec.Command("ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path)
}
