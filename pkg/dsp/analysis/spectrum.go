package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum returns the magnitude of the positive-frequency bins of a
// Hann-windowed real FFT of samples. Bin i is at i*sampleRate/len(samples).
func Spectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}

	windowed := make([]float64, len(samples))
	copy(windowed, samples)
	window.Apply(windowed, window.Hann)

	bins := fft.FFTReal(windowed)
	magnitude := make([]float64, len(bins)/2+1)
	for i := range magnitude {
		magnitude[i] = cmplx.Abs(bins[i])
	}
	return magnitude
}

// PeakFrequency returns the frequency of the strongest non-DC bin and its
// magnitude, refined by parabolic interpolation between neighbours.
func PeakFrequency(samples []float64, sampleRate float64) (freq, magnitude float64) {
	mag := Spectrum(samples)
	if len(mag) < 3 {
		return 0, 0
	}

	peakBin := 1
	for i := 2; i < len(mag); i++ {
		if mag[i] > mag[peakBin] {
			peakBin = i
		}
	}

	offset := 0.0
	if peakBin < len(mag)-1 {
		a, b, c := mag[peakBin-1], mag[peakBin], mag[peakBin+1]
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}

	binWidth := sampleRate / float64(len(samples))
	return (float64(peakBin) + offset) * binWidth, mag[peakBin]
}

// Summary describes a rendered block.
type Summary struct {
	Peak      float64
	RMS       float64
	Crossings int
	Frequency float64 // dominant frequency in Hz
}

// PeakDB returns the peak level in decibels.
func (s Summary) PeakDB() float64 {
	return LinearToDB(s.Peak)
}

// RMSDB returns the RMS level in decibels.
func (s Summary) RMSDB() float64 {
	return LinearToDB(s.RMS)
}

// Summarize measures samples rendered at sampleRate.
func Summarize(samples []float64, sampleRate float64) Summary {
	freq, _ := PeakFrequency(samples, sampleRate)
	if math.IsNaN(freq) {
		freq = 0
	}
	return Summary{
		Peak:      Peak(samples),
		RMS:       RMS(samples),
		Crossings: ZeroCrossings(samples),
		Frequency: freq,
	}
}
