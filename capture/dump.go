package capture

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"
)

// DumpWAV writes a captured utterance to a WAV file under dir, for inspecting
// capture quality offline. It returns the path of the written file.
func DumpWAV(fileSys afero.Fs, dir string, sampleRate int, pcm []byte) (string, error) {
	if err := fileSys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating dump dir: %w", err)
	}

	waveFilename := filepath.Join(dir, "utterance"+strconv.Itoa(int(time.Now().Unix()))+".wav")

	waveFile, err := fileSys.Create(waveFilename)
	if err != nil {
		return "", fmt.Errorf("error creating dump file: %w", err)
	}

	param := wave.WriterParam{
		Out:           waveFile,
		Channel:       1,
		SampleRate:    sampleRate,
		BitsPerSample: 16,
	}

	waveWriter, err := wave.NewWriter(param)
	if err != nil {
		return "", fmt.Errorf("error creating wave writer: %w", err)
	}

	defer waveWriter.Close()

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}

	if _, err = waveWriter.WriteSample16(samples); err != nil {
		return "", fmt.Errorf("error writing samples: %w", err)
	}

	return waveFilename, nil
}
