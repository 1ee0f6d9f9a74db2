package oscillator

import (
	"github.com/justyntemme/chipsynth/pkg/dsp"
	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
	"github.com/justyntemme/chipsynth/pkg/dsp/utility"
)

// Noise walks a pre-generated table of random nibbles, moving to the next
// entry every interval. The table is drawn once; playback never
// re-randomizes, which mirrors the repeating character of a hardware LFSR.
type Noise struct {
	table      [dsp.NoiseTableSize]nibble.Nibble
	interval   float64 // ms
	secCounter float64
	index      int
}

// NewNoise creates a noise oscillator with an unseeded table.
func NewNoise() *Noise {
	return newNoise(utility.NewUniform())
}

// NewNoiseSeeded creates a noise oscillator whose table is reproducible.
func NewNoiseSeeded(seed int64) *Noise {
	return newNoise(utility.NewUniformSeeded(seed))
}

func newNoise(src *utility.Uniform) *Noise {
	n := &Noise{interval: 1.0}
	for i := range n.table {
		n.table[i] = nibble.FromFloat(src.Next())
	}
	return n
}

// SetInterval sets the step interval in milliseconds.
func (n *Noise) SetInterval(ms float64) {
	if ms < 0 {
		ms = 0
	}
	n.interval = ms
}

// Interval returns the step interval in milliseconds.
func (n *Noise) Interval() float64 {
	return n.interval
}

// Table returns a copy of the noise table.
func (n *Noise) Table() [dsp.NoiseTableSize]nibble.Nibble {
	return n.table
}

// Index returns the current table position.
func (n *Noise) Index() int {
	return n.index
}

// Reset restarts the walk at the first entry.
func (n *Noise) Reset() {
	n.index = 0
	n.secCounter = 0
}

// Process returns the current table entry, stepping once the interval has elapsed.
func (n *Noise) Process(sampleRate float64) nibble.Nibble {
	n.secCounter += 1.0 / sampleRate
	if n.secCounter >= n.interval/1000.0 {
		n.index = (n.index + 1) % len(n.table)
		n.secCounter = 0
	}
	return n.table[n.index]
}
