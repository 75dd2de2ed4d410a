// Package config provides the YAML configuration schema and loader for the
// voice assistant.
package config

import "time"

// Config is the root configuration, loaded from a YAML file with [Load].
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Wake    WakeConfig    `yaml:"wake"`
	VAD     VADConfig     `yaml:"vad"`
	STT     STTConfig     `yaml:"stt"`
	TTS     TTSConfig     `yaml:"tts"`
	Gateway GatewayConfig `yaml:"gateway"`
}

// AudioConfig holds input format and playback settings.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`

	// FrameSize is the number of samples per classified frame. 512 samples
	// at 16 kHz is what the Silero model expects.
	FrameSize int `yaml:"frame_size"`

	PlaybackBackend string `yaml:"playback_backend"`

	// ChimePath, when set, is played after the wake word so the user knows
	// the assistant is listening.
	ChimePath string `yaml:"chime_path"`

	// AckPath, when set, is played after an utterance is captured to cover
	// the transcription and gateway round trip.
	AckPath string `yaml:"ack_path"`

	// MinUtteranceSec discards captures shorter than this instead of sending
	// them to transcription.
	MinUtteranceSec float64 `yaml:"min_utterance_sec"`

	// DumpDir, when set, receives a WAV copy of every captured utterance.
	DumpDir string `yaml:"dump_dir"`
}

// WakeConfig holds the wake-word engine settings.
type WakeConfig struct {
	AccessKey string `yaml:"access_key"`
	Keyword   string `yaml:"keyword"`
}

// VADEngine selects the speech classifier implementation.
type VADEngine string

const (
	// EngineSilero uses the Silero ONNX model.
	EngineSilero VADEngine = "silero"

	// EngineFlux uses the pure-Go spectral-flux classifier.
	EngineFlux VADEngine = "flux"
)

// IsValid reports whether e is a recognised engine.
func (e VADEngine) IsValid() bool {
	return e == EngineSilero || e == EngineFlux
}

// VADConfig holds the capture timing parameters.
type VADConfig struct {
	Engine    VADEngine `yaml:"engine"`
	ModelPath string    `yaml:"model_path"`
	Threshold float64   `yaml:"threshold"`

	SilenceTimeoutSec float64 `yaml:"silence_timeout_sec"`
	MaxRecordingSec   float64 `yaml:"max_recording_sec"`
	MaxWaitSec        float64 `yaml:"max_wait_sec"`
	OnsetWindowSec    float64 `yaml:"onset_window_sec"`
}

func (v VADConfig) SilenceTimeout() time.Duration {
	return seconds(v.SilenceTimeoutSec)
}

func (v VADConfig) MaxRecording() time.Duration {
	return seconds(v.MaxRecordingSec)
}

func (v VADConfig) MaxWait() time.Duration {
	return seconds(v.MaxWaitSec)
}

func (v VADConfig) OnsetWindow() time.Duration {
	return seconds(v.OnsetWindowSec)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// STTProvider selects the transcription engine.
type STTProvider string

const (
	// ProviderWhisper runs a local whisper.cpp model.
	ProviderWhisper STTProvider = "whisper"

	// ProviderOpenAI calls the OpenAI transcription API.
	ProviderOpenAI STTProvider = "openai"
)

// IsValid reports whether p is a recognised provider.
func (p STTProvider) IsValid() bool {
	return p == ProviderWhisper || p == ProviderOpenAI
}

// STTConfig selects and configures the transcription engine.
type STTConfig struct {
	Provider  STTProvider `yaml:"provider"`
	ModelPath string      `yaml:"model_path"`
	APIKey    string      `yaml:"api_key"`
	Model     string      `yaml:"model"`
}

// TTSConfig holds the speech synthesis settings.
type TTSConfig struct {
	APIKey          string  `yaml:"api_key"`
	VoiceID         string  `yaml:"voice_id"`
	Model           string  `yaml:"model"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
}

// GatewayConfig holds the assistant gateway connection settings.
type GatewayConfig struct {
	URL          string `yaml:"url"`
	Token        string `yaml:"token"`
	Agent        string `yaml:"agent"`
	Session      string `yaml:"session"`
	SystemPrompt string `yaml:"system_prompt"`
}
