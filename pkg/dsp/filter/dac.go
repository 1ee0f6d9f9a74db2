package filter

import (
	"math"

	"github.com/justyntemme/chipsynth/pkg/dsp"
	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
)

// DAC reconstructs a continuous signal from nibble samples with a
// low-pass biquad. Coefficients are recomputed lazily, only after the
// frequency, Q or sample rate changed.
type DAC struct {
	biquad *Biquad

	frequency float64
	q         float64

	dirty          bool
	lastSampleRate float64
	updates        int
}

// NewDAC creates a DAC at the given cutoff frequency and Q.
func NewDAC(frequency, q float64) *DAC {
	d := &DAC{biquad: NewBiquad()}
	d.SetFrequency(frequency)
	d.SetQ(q)
	return d
}

// SetFrequency sets the cutoff in Hz.
func (d *DAC) SetFrequency(hz float64) {
	hz = math.Max(1, hz)
	if hz != d.frequency {
		d.frequency = hz
		d.dirty = true
	}
}

// Frequency returns the configured cutoff in Hz.
func (d *DAC) Frequency() float64 {
	return d.frequency
}

// SetQ sets the resonance.
func (d *DAC) SetQ(q float64) {
	if q <= 0 {
		q = dsp.DefaultQ
	}
	if q != d.q {
		d.q = q
		d.dirty = true
	}
}

// Q returns the configured resonance.
func (d *DAC) Q() float64 {
	return d.q
}

// Coefficients returns the cached coefficients.
func (d *DAC) Coefficients() Coefficients {
	return d.biquad.Coefficients()
}

// Updates returns how many times coefficients were computed.
func (d *DAC) Updates() int {
	return d.updates
}

// Reset clears the filter history, keeping the coefficients.
func (d *DAC) Reset() {
	d.biquad.Reset()
}

// Process converts n to a float and filters it.
func (d *DAC) Process(n nibble.Nibble, sampleRate float64) float64 {
	if d.dirty || sampleRate != d.lastSampleRate {
		d.update(sampleRate)
	}
	return d.biquad.Tick(n.Float())
}

func (d *DAC) update(sampleRate float64) {
	// Keep the cutoff below Nyquist.
	freq := math.Min(d.frequency, sampleRate*dsp.MaxFilterRatio)
	d.biquad.SetLowpass(sampleRate, freq, d.q)
	d.lastSampleRate = sampleRate
	d.dirty = false
	d.updates++
}
