package oscillator

import (
	"fmt"
	"math"

	"github.com/justyntemme/chipsynth/pkg/dsp"
	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
)

// Duty is the fraction of a pulse period spent at the low level.
type Duty int

const (
	// Duty12 is a 12.5% pulse
	Duty12 Duty = iota
	// Duty25 is a 25% pulse
	Duty25
	// Duty50 is a square wave
	Duty50
	// Duty75 is a 75% pulse
	Duty75
)

// Ratio returns the duty as a fraction of one period.
func (d Duty) Ratio() float64 {
	switch d {
	case Duty12:
		return 0.125
	case Duty25:
		return 0.25
	case Duty75:
		return 0.75
	default:
		return 0.5
	}
}

// String returns the duty as a percentage.
func (d Duty) String() string {
	return fmt.Sprintf("%g%%", d.Ratio()*100)
}

// Square is a phase-accumulating pulse oscillator.
type Square struct {
	phase      float64
	frequency  float64
	pitchRatio float64
	duty       Duty
}

// NewSquare creates a 50% pulse at A4.
func NewSquare() *Square {
	return &Square{
		frequency:  dsp.ReferenceFrequency,
		pitchRatio: 1.0,
		duty:       Duty50,
	}
}

// SetFrequency sets the oscillator frequency in Hz.
func (s *Square) SetFrequency(freq float64) {
	s.frequency = freq
}

// Frequency returns the oscillator frequency in Hz.
func (s *Square) Frequency() float64 {
	return s.frequency
}

// SetPitch tunes the oscillator to a note number.
func (s *Square) SetPitch(note float64) {
	s.frequency = dsp.NoteToFrequency(note)
}

// SetPitchRatio sets the multiplicative bend applied on top of the frequency.
func (s *Square) SetPitchRatio(ratio float64) {
	s.pitchRatio = ratio
}

// SetDuty selects the pulse width.
func (s *Square) SetDuty(d Duty) {
	s.duty = d
}

// Duty returns the selected pulse width.
func (s *Square) Duty() Duty {
	return s.duty
}

// Reset resets the phase to 0.
func (s *Square) Reset() {
	s.phase = 0
}

// Pulse returns the sample of a pulse wave at phase for duty.
func Pulse(phase float64, duty Duty) nibble.Nibble {
	if phase-math.Floor(phase) < duty.Ratio() {
		return nibble.Min
	}
	return nibble.Max
}

// Process returns the current sample and advances the phase by one sample.
func (s *Square) Process(sampleRate float64) nibble.Nibble {
	sample := Pulse(s.phase, s.duty)
	s.phase += dsp.Normalize(s.frequency * s.pitchRatio / sampleRate)
	if s.phase >= 1.0 || s.phase < 0 {
		s.phase -= math.Floor(s.phase)
	}
	return sample
}
