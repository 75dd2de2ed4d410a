package speech_to_text

import (
	"encoding/binary"
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// EncodeWAV wraps raw little-endian 16-bit mono PCM in a WAV container. The
// capture core hands out bare PCM; transcription services want a file format.
func EncodeWAV(pcm []byte, sampleRate int) ([]byte, error) {
	fileSys := afero.NewMemMapFs()

	waveFile, err := fileSys.Create("utterance.wav")
	if err != nil {
		return nil, fmt.Errorf("error creating in-memory file: %w", err)
	}

	data := make([]int, len(pcm)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2])))
	}

	encoder := wav.NewEncoder(waveFile, sampleRate, 16, 1, 1)

	wavBuffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err = encoder.Write(wavBuffer); err != nil {
		return nil, fmt.Errorf("error writing samples: %w", err)
	}

	if err = encoder.Close(); err != nil {
		return nil, fmt.Errorf("error finalizing wav: %w", err)
	}

	if err = waveFile.Close(); err != nil {
		return nil, fmt.Errorf("error closing in-memory file: %w", err)
	}

	return afero.ReadFile(fileSys, "utterance.wav")
}

// pcmToFloat32 converts 16-bit signed little-endian PCM to float32 samples
// normalised to [-1, 1], the input format the whisper bindings expect.
func pcmToFloat32(pcm []byte) []float32 {
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:i*2+2]))) / 32768.0
	}

	return samples
}
