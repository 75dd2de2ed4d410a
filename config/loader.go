package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}

	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Audio.SampleRate == 0 {
		cfg.Audio.SampleRate = 16000
	}

	if cfg.Audio.FrameSize == 0 {
		cfg.Audio.FrameSize = 512
	}

	if cfg.Audio.PlaybackBackend == "" {
		cfg.Audio.PlaybackBackend = "auto"
	}

	if cfg.Audio.MinUtteranceSec == 0 {
		cfg.Audio.MinUtteranceSec = 0.5
	}

	if cfg.Wake.Keyword == "" {
		cfg.Wake.Keyword = "jarvis"
	}

	if cfg.VAD.Engine == "" {
		if cfg.VAD.ModelPath != "" {
			cfg.VAD.Engine = EngineSilero
		} else {
			cfg.VAD.Engine = EngineFlux
		}
	}

	if cfg.VAD.Threshold == 0 {
		cfg.VAD.Threshold = 0.5
	}

	if cfg.VAD.SilenceTimeoutSec == 0 {
		cfg.VAD.SilenceTimeoutSec = 1.5
	}

	if cfg.VAD.MaxRecordingSec == 0 {
		cfg.VAD.MaxRecordingSec = 30
	}

	if cfg.VAD.MaxWaitSec == 0 {
		cfg.VAD.MaxWaitSec = 5
	}

	if cfg.VAD.OnsetWindowSec == 0 {
		cfg.VAD.OnsetWindowSec = 0.5
	}

	if cfg.STT.Provider == "" {
		if cfg.STT.ModelPath != "" {
			cfg.STT.Provider = ProviderWhisper
		} else {
			cfg.STT.Provider = ProviderOpenAI
		}
	}

	if cfg.Gateway.Agent == "" {
		cfg.Gateway.Agent = "clawd"
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive"))
	}

	if cfg.Audio.FrameSize <= 0 {
		errs = append(errs, fmt.Errorf("audio.frame_size must be positive"))
	}

	if cfg.Wake.AccessKey == "" {
		errs = append(errs, fmt.Errorf("wake.access_key is required"))
	}

	if !cfg.VAD.Engine.IsValid() {
		errs = append(errs, fmt.Errorf("vad.engine %q is invalid; valid values: silero, flux", cfg.VAD.Engine))
	}

	if cfg.VAD.Engine == EngineSilero && cfg.VAD.ModelPath == "" {
		errs = append(errs, fmt.Errorf("vad.model_path is required for the silero engine"))
	}

	if cfg.VAD.Threshold < 0 || cfg.VAD.Threshold > 1 {
		errs = append(errs, fmt.Errorf("vad.threshold must be within [0, 1]"))
	}

	if !cfg.STT.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("stt.provider %q is invalid; valid values: whisper, openai", cfg.STT.Provider))
	}

	if cfg.STT.Provider == ProviderWhisper && cfg.STT.ModelPath == "" {
		errs = append(errs, fmt.Errorf("stt.model_path is required for the whisper provider"))
	}

	if cfg.STT.Provider == ProviderOpenAI && cfg.STT.APIKey == "" {
		errs = append(errs, fmt.Errorf("stt.api_key is required for the openai provider"))
	}

	if cfg.TTS.APIKey == "" {
		errs = append(errs, fmt.Errorf("tts.api_key is required"))
	}

	if cfg.TTS.VoiceID == "" {
		errs = append(errs, fmt.Errorf("tts.voice_id is required"))
	}

	if cfg.Gateway.URL == "" {
		errs = append(errs, fmt.Errorf("gateway.url is required"))
	}

	if cfg.Gateway.Token == "" {
		errs = append(errs, fmt.Errorf("gateway.token is required"))
	}

	return errors.Join(errs...)
}
