// Package oscillator provides the chip oscillators: pulse, noise and a
// 32-step wavetable, all producing nibble samples.
package oscillator

import (
	"fmt"

	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
)

// Kind selects which oscillator of a Bank is sounding.
type Kind int

const (
	// KindSquare selects the pulse oscillator
	KindSquare Kind = iota
	// KindNoise selects the noise oscillator
	KindNoise
	// KindWavetable selects the wavetable oscillator
	KindWavetable
)

// String returns the display name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSquare:
		return "Square"
	case KindNoise:
		return "Noise"
	case KindWavetable:
		return "Wavetable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Bank owns one oscillator of each kind. The set is closed, so dispatch is
// a plain switch on Kind.
type Bank struct {
	Square    *Square
	Noise     *Noise
	Wavetable *Wavetable
}

// NewBank creates a bank with a freshly randomized noise table and a sine
// wavetable.
func NewBank() *Bank {
	return &Bank{
		Square:    NewSquare(),
		Noise:     NewNoise(),
		Wavetable: NewWavetable(),
	}
}

// NewBankSeeded creates a bank whose noise table is reproducible.
func NewBankSeeded(seed int64) *Bank {
	return &Bank{
		Square:    NewSquare(),
		Noise:     NewNoiseSeeded(seed),
		Wavetable: NewWavetable(),
	}
}

// SetPitchRatio forwards the bend ratio to the pitch-sensitive oscillators.
func (b *Bank) SetPitchRatio(ratio float64) {
	b.Square.SetPitchRatio(ratio)
	b.Wavetable.SetPitchRatio(ratio)
}

// Reset restarts every oscillator phase.
func (b *Bank) Reset() {
	b.Square.Reset()
	b.Noise.Reset()
	b.Wavetable.Reset()
}

// Process runs the oscillator selected by kind at frequency and returns
// its sample. Unselected oscillators do not advance.
func (b *Bank) Process(kind Kind, frequency, sampleRate float64) nibble.Nibble {
	switch kind {
	case KindSquare:
		b.Square.SetFrequency(frequency)
		return b.Square.Process(sampleRate)
	case KindNoise:
		return b.Noise.Process(sampleRate)
	case KindWavetable:
		b.Wavetable.SetFrequency(frequency)
		return b.Wavetable.Process(sampleRate)
	default:
		return nibble.Zero
	}
}
