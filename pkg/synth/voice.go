// Package synth composes the chip oscillators, sweep, envelope and DAC
// into a monophonic voice.
package synth

import (
	"fmt"
	"math"

	"github.com/justyntemme/chipsynth/pkg/dsp"
	"github.com/justyntemme/chipsynth/pkg/dsp/envelope"
	"github.com/justyntemme/chipsynth/pkg/dsp/filter"
	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
	"github.com/justyntemme/chipsynth/pkg/dsp/oscillator"
	"github.com/justyntemme/chipsynth/pkg/dsp/register"
	"github.com/justyntemme/chipsynth/pkg/dsp/sweep"
)

// Voice is one monophonic sound unit. It is not safe for concurrent use;
// all calls belong to the audio thread.
type Voice struct {
	bank     *oscillator.Bank
	sweep    *sweep.Sweep
	envelope *envelope.Envelope
	dac      *filter.DAC

	kind      oscillator.Kind
	frequency float64 // running frequency, note frequency plus sweep
	gain      float64
	input     nibble.Nibble // last sample fed to the DAC

	params [ParamCount]float64
}

// NewVoice creates a voice with default parameters.
func NewVoice() *Voice {
	return newVoice(oscillator.NewBank())
}

// NewVoiceSeeded creates a voice whose noise table and random wavetables
// are reproducible.
func NewVoiceSeeded(seed int64) *Voice {
	v := newVoice(oscillator.NewBankSeeded(seed))
	v.bank.Wavetable.SetSeed(seed)
	return v
}

func newVoice(bank *oscillator.Bank) *Voice {
	v := &Voice{
		bank:      bank,
		sweep:     sweep.New(),
		envelope:  envelope.New(),
		dac:       filter.NewDAC(12000, dsp.DefaultQ),
		frequency: dsp.ReferenceFrequency,
		gain:      1,
	}
	for id, value := range Defaults() {
		v.SetParam(ParamID(id), value)
	}
	return v
}

// Trigger applies an event.
func (v *Voice) Trigger(e Event) {
	switch e := e.(type) {
	case NoteOn:
		freq := dsp.NoteToFrequency(float64(e.Note))
		v.frequency = freq
		v.sweep.Reset(freq)
		v.envelope.NoteOn(e.Note, e.Velocity)
	case NoteOff:
		if e.Note == v.envelope.Note() {
			v.envelope.NoteOff()
		}
	case PitchBend:
		v.SetParam(ParamPitchBend, e.Semitones)
	case SweepReset:
		v.frequency = e.Frequency
		v.sweep.Reset(e.Frequency)
	case SetWaveTableSample:
		v.bank.Wavetable.SetSample(e.Index, e.Value)
	case SetWaveTable:
		v.bank.Wavetable.SetTable(e.Table)
	case ResetWaveTableSine:
		v.bank.Wavetable.ResetSine()
	case ResetWaveTableRandom:
		v.bank.Wavetable.ResetRandom()
	}
}

// SetParam sets a parameter in plain units. Values are clamped to the
// parameter's range; unknown IDs are ignored.
func (v *Voice) SetParam(id ParamID, plain float64) {
	if id >= ParamCount || math.IsNaN(plain) {
		return
	}
	plain = clampParam(id, plain)
	v.params[id] = plain

	switch id {
	case ParamMasterVolume:
		v.gain = dsp.DBToLinear(plain)
	case ParamPitchBend, ParamDetune:
		cents := v.params[ParamPitchBend]*100 + v.params[ParamDetune]
		v.bank.SetPitchRatio(dsp.CentsToRatio(cents))
	case ParamOscillatorType:
		v.kind = oscillator.Kind(math.Round(plain))
	case ParamSweepType:
		v.sweep.SetMode(sweep.Mode(math.Round(plain)))
	case ParamSweepAmount:
		v.sweep.SetAmount(plain)
	case ParamSweepPeriod:
		v.sweep.SetPeriod(plain)
	case ParamStutterTime:
		v.envelope.Stutter().SetTime(plain)
	case ParamStutterDepth:
		v.envelope.Stutter().SetDepth(plain)
	case ParamStutterWhen:
		v.envelope.Stutter().SetTiming(envelope.Timing(math.Round(plain)))
	case ParamAttack:
		v.envelope.SetAttack(plain)
	case ParamDecay:
		v.envelope.SetDecay(plain)
	case ParamSustain:
		v.envelope.SetSustain(plain)
	case ParamRelease:
		v.envelope.SetRelease(plain)
	case ParamSquareDuty:
		v.bank.Square.SetDuty(oscillator.Duty(math.Round(plain)))
	case ParamNoiseInterval:
		v.bank.Noise.SetInterval(plain)
	case ParamDacFreq:
		v.dac.SetFrequency(plain)
	case ParamDacQ:
		v.dac.SetQ(plain)
	}
}

// Param returns a parameter in plain units.
func (v *Voice) Param(id ParamID) float64 {
	if id >= ParamCount {
		return 0
	}
	return v.params[id]
}

// Process renders one sample.
func (v *Voice) Process(sampleRate float64) float64 {
	level := v.envelope.Process(sampleRate)

	v.input = nibble.Zero
	if !v.sweep.Clipped() {
		v.frequency = dsp.Normalize(v.frequency + v.sweep.Process(sampleRate))
		v.input = v.bank.Process(v.kind, v.frequency, sampleRate).Mul(level)
	}

	return dsp.Normalize(v.dac.Process(v.input, sampleRate) * v.gain)
}

// Assignable reports whether the voice may take note.
func (v *Voice) Assignable(note uint8) bool {
	return v.envelope.Assignable(note)
}

// NoteOn reports whether the voice's key is held.
func (v *Voice) NoteOn() bool {
	return v.envelope.IsNoteOn()
}

// Note returns the voice's current note.
func (v *Voice) Note() uint8 {
	return v.envelope.Note()
}

// Stage returns the envelope stage.
func (v *Voice) Stage() envelope.Stage {
	return v.envelope.Stage()
}

// Active reports whether the voice produces sound.
func (v *Voice) Active() bool {
	return v.envelope.Stage() != envelope.StageOff
}

// Clipped reports whether the sweep latched out of range.
func (v *Voice) Clipped() bool {
	return v.sweep.Clipped()
}

// Frequency returns the running oscillator frequency.
func (v *Voice) Frequency() float64 {
	return v.frequency
}

// Wavetable returns a copy of the wavetable.
func (v *Voice) Wavetable() oscillator.Table {
	return v.bank.Wavetable.Table()
}

// Reset silences the voice and clears filter history.
func (v *Voice) Reset() {
	v.envelope.Reset()
	v.bank.Reset()
	v.dac.Reset()
	v.sweep.Reset(v.frequency)
}

// Registers encodes the sweep (NR10) and duty (NR11) settings as register
// images. Settings without a register form return an error wrapping
// register.ErrNotRepresentable.
func (v *Voice) Registers() (nr10, nr11 uint8, err error) {
	nr10, err = v.sweep.Register()
	if err != nil {
		return 0, 0, fmt.Errorf("NR10: %w", err)
	}
	nr11, err = register.NR11Duty.Set(0, v.params[ParamSquareDuty])
	if err != nil {
		return 0, 0, fmt.Errorf("NR11: %w", err)
	}
	return nr10, nr11, nil
}

// LoadRegisters applies NR10 and NR11 images.
func (v *Voice) LoadRegisters(nr10, nr11 uint8) {
	v.sweep.LoadRegister(nr10)
	v.params[ParamSweepType] = float64(v.sweep.Mode())
	v.params[ParamSweepAmount] = v.sweep.Amount()
	v.params[ParamSweepPeriod] = v.sweep.Period()
	v.SetParam(ParamSquareDuty, float64(register.NR11Duty.Extract(nr11)))
}

var paramRanges = func() [ParamCount][2]float64 {
	var out [ParamCount][2]float64
	for _, p := range NewRegistry().All() {
		out[p.ID] = [2]float64{p.Min, p.Max}
	}
	return out
}()

func clampParam(id ParamID, plain float64) float64 {
	r := paramRanges[id]
	return dsp.Clamp(plain, r[0], r[1])
}
