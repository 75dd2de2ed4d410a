package vad

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	// A frame whose spectral flux exceeds the noise floor by this ratio
	// scores above 0.5.
	defaultFluxRatio = 1.75

	// How quickly the noise floor tracks the observed flux.
	floorAlpha = 0.05
)

// fluxImpl is a pure-Go classifier based on spectral flux: the sum of
// positive magnitude changes between consecutive frame spectra, compared
// against a slowly adapting noise floor. It needs no model file and serves
// as a fallback when no ONNX model is configured.
type fluxImpl struct {
	ratio float64
	prev  []float64
	floor float64
}

func NewFlux() *fluxImpl {
	return &fluxImpl{
		ratio: defaultFluxRatio,
	}
}

func (c *fluxImpl) Score(frame []int16) (float64, error) {
	spectrum := magnitudes(frame)

	if c.prev == nil {
		c.prev = spectrum

		return 0, nil
	}

	var flux float64

	for i := range spectrum {
		if d := spectrum[i] - c.prev[i]; d > 0 {
			flux += d
		}
	}

	c.prev = spectrum

	if flux <= 0 {
		return 0, nil
	}

	if c.floor == 0 {
		// first audible frame seeds the floor
		c.floor = flux

		return 0, nil
	}

	score := flux / (flux + c.ratio*c.floor)

	c.floor = c.floor*(1-floorAlpha) + flux*floorAlpha

	return score, nil
}

func (c *fluxImpl) Reset() {
	c.prev = nil
	c.floor = 0
}

func magnitudes(frame []int16) []float64 {
	samples := make([]float64, len(frame))
	for i, s := range frame {
		samples[i] = float64(s) / 32768.0
	}

	coeffs := window.Hamming(len(samples))
	for i := range samples {
		samples[i] *= coeffs[i]
	}

	spectrum := fft.FFTReal(samples)

	mags := make([]float64, len(spectrum)/2)
	for i := range mags {
		mags[i] = cmplx.Abs(spectrum[i])
	}

	return mags
}
