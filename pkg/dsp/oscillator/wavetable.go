package oscillator

import (
	"math"

	"github.com/justyntemme/chipsynth/pkg/dsp"
	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
	"github.com/justyntemme/chipsynth/pkg/dsp/utility"
)

// Table is the editable wavetable content.
type Table [dsp.WavetableSize]nibble.Nibble

// SineTable returns one sine period quantized through the nibble mapping.
func SineTable() Table {
	var t Table
	for i := range t {
		t[i] = nibble.FromFloat(math.Sin(dsp.TwoPi * float64(i) / float64(len(t))))
	}
	return t
}

// RandomTable returns a table of uniform random nibbles drawn from src.
func RandomTable(src *utility.Uniform) Table {
	var t Table
	for i := range t {
		t[i] = nibble.FromFloat(src.Next())
	}
	return t
}

// Wavetable plays a 32-step table at a phase scaled to the table size.
type Wavetable struct {
	table      Table
	phase      float64
	frequency  float64
	pitchRatio float64
	random     *utility.Uniform
}

// NewWavetable creates a wavetable oscillator holding one sine period.
func NewWavetable() *Wavetable {
	return &Wavetable{
		table:      SineTable(),
		frequency:  dsp.ReferenceFrequency,
		pitchRatio: 1.0,
		random:     utility.NewUniform(),
	}
}

// SetFrequency sets the oscillator frequency in Hz.
func (w *Wavetable) SetFrequency(freq float64) {
	w.frequency = freq
}

// SetPitchRatio sets the multiplicative bend.
func (w *Wavetable) SetPitchRatio(ratio float64) {
	w.pitchRatio = ratio
}

// PitchRatio returns the multiplicative bend.
func (w *Wavetable) PitchRatio() float64 {
	return w.pitchRatio
}

// SetSample writes one entry. Out-of-range indices are ignored.
func (w *Wavetable) SetSample(index int, value nibble.Nibble) {
	if index < 0 || index >= len(w.table) {
		return
	}
	w.table[index] = nibble.Clamp(int(value))
}

// SetTable replaces the whole table.
func (w *Wavetable) SetTable(t Table) {
	w.table = t
}

// Table returns a copy of the table.
func (w *Wavetable) Table() Table {
	return w.table
}

// ResetSine loads one sine period.
func (w *Wavetable) ResetSine() {
	w.table = SineTable()
}

// ResetRandom loads uniform random content.
func (w *Wavetable) ResetRandom() {
	w.table = RandomTable(w.random)
}

// SetSeed makes ResetRandom reproducible.
func (w *Wavetable) SetSeed(seed int64) {
	w.random.SetSeed(seed)
}

// Reset resets the phase to 0.
func (w *Wavetable) Reset() {
	w.phase = 0
}

// Process returns the entry under the phase and advances by one sample.
func (w *Wavetable) Process(sampleRate float64) nibble.Nibble {
	size := float64(len(w.table))
	idx := int(w.phase)
	if idx < 0 || idx >= len(w.table) {
		idx = 0
	}
	sample := w.table[idx]

	w.phase += dsp.Normalize(w.frequency*w.pitchRatio/sampleRate) * size
	if w.phase >= size || w.phase < 0 {
		w.phase = math.Mod(w.phase, size)
		if w.phase < 0 {
			w.phase += size
		}
	}
	return sample
}
