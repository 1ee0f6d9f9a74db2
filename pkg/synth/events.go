package synth

import (
	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
	"github.com/justyntemme/chipsynth/pkg/dsp/oscillator"
)

// Event is delivered to a Voice through Trigger. The set of events is
// closed; only types in this package implement it.
type Event interface {
	event()
}

// NoteOn starts a note. Velocity is 0-1.
type NoteOn struct {
	Note     uint8
	Velocity float64
}

// NoteOff releases a note.
type NoteOff struct {
	Note uint8
}

// PitchBend sets the bend offset in semitones.
type PitchBend struct {
	Semitones float64
}

// SweepReset reseeds the sweep and the running frequency, clearing the
// clip latch.
type SweepReset struct {
	Frequency float64
}

// SetWaveTableSample writes one wavetable entry. Out-of-range indices are
// ignored.
type SetWaveTableSample struct {
	Index int
	Value nibble.Nibble
}

// SetWaveTable replaces the whole wavetable.
type SetWaveTable struct {
	Table oscillator.Table
}

// ResetWaveTableSine restores the sine wavetable.
type ResetWaveTableSine struct{}

// ResetWaveTableRandom fills the wavetable with random levels.
type ResetWaveTableRandom struct{}

func (NoteOn) event()               {}
func (NoteOff) event()              {}
func (PitchBend) event()            {}
func (SweepReset) event()           {}
func (SetWaveTableSample) event()   {}
func (SetWaveTable) event()         {}
func (ResetWaveTableSine) event()   {}
func (ResetWaveTableRandom) event() {}
