package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/spf13/afero"

	"voice-assistant/audio"
	"voice-assistant/capture"
	"voice-assistant/clients/elevenlabs"
	"voice-assistant/clients/gateway"
	"voice-assistant/config"
	"voice-assistant/playback"
	"voice-assistant/speech_to_text"
	"voice-assistant/vad"
	"voice-assistant/wake"
)

func main() {
	configFlag := flag.String("c", "config.yaml", "path to the YAML configuration file")

	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	fileSys := afero.NewOsFs()

	device := audio.NewPortAudioDevice()
	defer audio.Terminate()

	var classifier vad.Classifier

	switch cfg.VAD.Engine {
	case config.EngineSilero:
		silero, err := vad.NewSilero(&vad.SileroConfig{
			ModelPath:  cfg.VAD.ModelPath,
			SampleRate: cfg.Audio.SampleRate,
			Threshold:  float32(cfg.VAD.Threshold),
		})
		if err != nil {
			return fmt.Errorf("error with vad.NewSilero: %w", err)
		}

		defer silero.Close()

		classifier = silero
	case config.EngineFlux:
		classifier = vad.NewFlux()
	}

	recorder, err := capture.New(&capture.Config{
		Device:         device,
		Classifier:     classifier,
		Observer:       capture.LogObserver(30),
		SampleRate:     cfg.Audio.SampleRate,
		FrameSize:      cfg.Audio.FrameSize,
		VADThreshold:   cfg.VAD.Threshold,
		SilenceTimeout: cfg.VAD.SilenceTimeout(),
		MaxDuration:    cfg.VAD.MaxRecording(),
		OnsetWindow:    cfg.VAD.OnsetWindow(),
		MaxWait:        cfg.VAD.MaxWait(),
	})
	if err != nil {
		return fmt.Errorf("error with capture.New: %w", err)
	}

	wakeDetector, err := wake.New(&wake.Config{
		AccessKey: cfg.Wake.AccessKey,
		Keyword:   cfg.Wake.Keyword,
		Device:    device,
	})
	if err != nil {
		return fmt.Errorf("error with wake.New: %w", err)
	}

	defer wakeDetector.Close()

	var sttEngine speech_to_text.Interface

	newOpenAI := func() (speech_to_text.Interface, error) {
		return speech_to_text.NewOpenAI(&speech_to_text.OpenAIConfig{
			APIKey: cfg.STT.APIKey,
			Model:  cfg.STT.Model,
		})
	}

	switch cfg.STT.Provider {
	case config.ProviderWhisper:
		var modelClose func() error

		newLocal := func() (speech_to_text.Interface, error) {
			model, err := whisper.New(cfg.STT.ModelPath)
			if err != nil {
				return nil, fmt.Errorf("error loading whisper model: %w", err)
			}

			modelClose = model.Close

			return speech_to_text.NewWhisper(&speech_to_text.WhisperConfig{
				Model: model,
			})
		}

		// without an API key there is nothing to fall back to
		newCloud := newOpenAI
		if cfg.STT.APIKey == "" {
			newCloud = nil
		}

		sttEngine, err = speech_to_text.NewWithFallback(newLocal, newCloud)
		if err != nil {
			return fmt.Errorf("error creating transcription engine: %w", err)
		}

		defer func() {
			if modelClose != nil {
				modelClose()
			}
		}()
	case config.ProviderOpenAI:
		sttEngine, err = newOpenAI()
		if err != nil {
			return fmt.Errorf("error with speech_to_text.NewOpenAI: %w", err)
		}
	}

	gatewayClient, err := gateway.New(&gateway.Config{
		URL:          cfg.Gateway.URL,
		Token:        cfg.Gateway.Token,
		Agent:        cfg.Gateway.Agent,
		Session:      cfg.Gateway.Session,
		SystemPrompt: cfg.Gateway.SystemPrompt,
	})
	if err != nil {
		return fmt.Errorf("error with gateway.New: %w", err)
	}

	ttsClient, err := elevenlabs.New(&elevenlabs.Config{
		FileSys:         fileSys,
		APIKey:          cfg.TTS.APIKey,
		VoiceID:         cfg.TTS.VoiceID,
		Model:           cfg.TTS.Model,
		Stability:       cfg.TTS.Stability,
		SimilarityBoost: cfg.TTS.SimilarityBoost,
	})
	if err != nil {
		return fmt.Errorf("error with elevenlabs.New: %w", err)
	}

	player, err := playback.New(&playback.Config{
		Backend: cfg.Audio.PlaybackBackend,
	})
	if err != nil {
		return fmt.Errorf("error with playback.New: %w", err)
	}

	minBytes := int(cfg.Audio.MinUtteranceSec * float64(cfg.Audio.SampleRate) * 2)

	for {
		log.Printf("listening for wake word %q", cfg.Wake.Keyword)

		if err := wakeDetector.Detect(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Printf("shutting down")

				return nil
			}

			return err
		}

		log.Printf("wake word detected")

		if cfg.Audio.ChimePath != "" {
			if err := player.Play(cfg.Audio.ChimePath); err != nil {
				log.Printf("error playing chime: %v", err)
			}

			// let the chime fade before the mic reopens
			time.Sleep(300 * time.Millisecond)
		}

		log.Printf("listening")

		pcm, err := recorder.Record(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Printf("shutting down")

				return nil
			}

			log.Printf("error capturing utterance: %v", err)

			continue
		}

		if len(pcm) < minBytes {
			log.Printf("utterance too short, ignoring")

			continue
		}

		if cfg.Audio.AckPath != "" {
			if err := player.Play(cfg.Audio.AckPath); err != nil {
				log.Printf("error playing ack: %v", err)
			}
		}

		if cfg.Audio.DumpDir != "" {
			if _, dumpErr := capture.DumpWAV(fileSys, cfg.Audio.DumpDir, cfg.Audio.SampleRate, pcm); dumpErr != nil {
				log.Printf("error dumping utterance: %v", dumpErr)
			}
		}

		log.Printf("transcribing")

		text, err := sttEngine.Transcribe(ctx, pcm, cfg.Audio.SampleRate)
		if err != nil {
			log.Printf("error running transcription: %v", err)

			continue
		}

		if strings.TrimSpace(text) == "" {
			log.Printf("empty transcript, ignoring")

			continue
		}

		log.Printf("you: %s", text)

		reply, err := gatewayClient.Send(ctx, text)
		if err != nil {
			log.Printf("error sending to gateway: %v", err)

			speak(ctx, ttsClient, player, fileSys, "Sorry, I couldn't get a response. Try again.")

			continue
		}

		if reply == "" {
			speak(ctx, ttsClient, player, fileSys, "Sorry, I couldn't get a response. Try again.")

			continue
		}

		log.Printf("assistant: %s", reply)

		speak(ctx, ttsClient, player, fileSys, reply)
	}
}

func speak(ctx context.Context, ttsClient elevenlabs.Interface, player playback.Interface, fileSys afero.Fs, text string) {
	audioPath, err := ttsClient.Synthesize(ctx, text)
	if err != nil {
		log.Printf("error synthesizing speech: %v", err)

		return
	}

	defer func() {
		if removeErr := fileSys.Remove(audioPath); removeErr != nil {
			log.Printf("error removing temp audio: %v", removeErr)
		}
	}()

	if err := player.Play(audioPath); err != nil {
		log.Printf("error playing speech: %v", err)
	}
}
