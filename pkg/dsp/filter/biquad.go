// Package filter provides digital signal processing filters
package filter

import (
	"math"

	"github.com/justyntemme/chipsynth/pkg/dsp"
)

// Biquad implements a second-order IIR filter (biquad)
// Direct Form I implementation on a single channel
type Biquad struct {
	// Coefficients
	a0, a1, a2 float64 // denominator (a0 is always normalized to 1.0)
	b0, b1, b2 float64 // numerator

	// State variables
	x1, x2 float64 // input delay line
	y1, y2 float64 // output delay line
}

// Coefficients holds a normalized biquad coefficient set.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// NewBiquad creates a new pass-through biquad filter
func NewBiquad() *Biquad {
	return &Biquad{a0: 1.0, b0: 1.0}
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// SetCoefficients sets the filter coefficients directly
func (b *Biquad) SetCoefficients(b0, b1, b2, a0, a1, a2 float64) {
	// Normalize by a0
	invA0 := 1.0 / a0
	b.b0 = dsp.Normalize(b0 * invA0)
	b.b1 = dsp.Normalize(b1 * invA0)
	b.b2 = dsp.Normalize(b2 * invA0)
	b.a0 = 1.0
	b.a1 = dsp.Normalize(a1 * invA0)
	b.a2 = dsp.Normalize(a2 * invA0)
}

// Coefficients returns the normalized coefficients in use.
func (b *Biquad) Coefficients() Coefficients {
	return Coefficients{B0: b.b0, B1: b.b1, B2: b.b2, A1: b.a1, A2: b.a2}
}

// Tick filters one sample. Every intermediate is flushed to zero.
func (b *Biquad) Tick(x0 float64) float64 {
	// Direct Form I
	y0 := dsp.Normalize(b.b0 * x0)
	y0 = dsp.Normalize(y0 + b.b1*b.x1)
	y0 = dsp.Normalize(y0 + b.b2*b.x2)
	y0 = dsp.Normalize(y0 - b.a1*b.y1)
	y0 = dsp.Normalize(y0 - b.a2*b.y2)

	// Update state
	b.x2 = b.x1
	b.x1 = x0
	b.y2 = b.y1
	b.y1 = y0

	return y0
}

// Process applies the filter to a buffer in place - no allocations
func (b *Biquad) Process(buffer []float64) {
	for i := range buffer {
		buffer[i] = b.Tick(buffer[i])
	}
}

// Design functions

// SetLowpass configures as a lowpass filter
func (b *Biquad) SetLowpass(sampleRate, frequency, q float64) {
	omega := 2.0 * math.Pi * frequency / sampleRate
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2.0 * q)

	b0 := (1.0 - cosOmega) / 2.0
	b1 := 1.0 - cosOmega
	b2 := (1.0 - cosOmega) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosOmega
	a2 := 1.0 - alpha

	b.SetCoefficients(b0, b1, b2, a0, a1, a2)
}
