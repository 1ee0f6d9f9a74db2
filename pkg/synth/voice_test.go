package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/justyntemme/chipsynth/pkg/dsp/analysis"
	"github.com/justyntemme/chipsynth/pkg/dsp/envelope"
	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
	"github.com/justyntemme/chipsynth/pkg/dsp/oscillator"
	"github.com/justyntemme/chipsynth/pkg/dsp/register"
)

const sampleRate = 44100.0

func render(v *Voice, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v.Process(sampleRate)
	}
	return out
}

func sustainedVoice() *Voice {
	v := NewVoiceSeeded(1)
	v.SetParam(ParamAttack, 0)
	v.SetParam(ParamDecay, 0)
	v.SetParam(ParamSustain, 1)
	return v
}

func TestVoiceA440(t *testing.T) {
	v := sustainedVoice()
	v.Trigger(NoteOn{Note: 69, Velocity: 1.0})

	out := render(v, 44100)

	t.Run("ZeroCrossings", func(t *testing.T) {
		crossings := analysis.ZeroCrossings(out)
		if crossings < 870 || crossings > 890 {
			t.Errorf("Expected 870-890 zero crossings for one second of A440, got %d", crossings)
		}
	})

	t.Run("Spectrum", func(t *testing.T) {
		freq, _ := analysis.PeakFrequency(out, sampleRate)
		if math.Abs(freq-440) > 2 {
			t.Errorf("Expected fundamental near 440 Hz, got %.2f Hz", freq)
		}
	})

	t.Run("Level", func(t *testing.T) {
		// -6 dB master volume on a full-scale pulse
		peak := analysis.Peak(out[1000:])
		if peak < 0.45 || peak > 0.6 {
			t.Errorf("Expected peak near 0.5, got %f", peak)
		}
	})
}

func TestVoiceNoteOffRelease(t *testing.T) {
	v := sustainedVoice()
	v.SetParam(ParamRelease, 0.1)

	v.Trigger(NoteOn{Note: 60, Velocity: 1.0})
	v.Trigger(NoteOff{Note: 60})

	out := render(v, int(0.2*sampleRate))

	if v.Stage() != envelope.StageOff {
		t.Errorf("Expected envelope Off, got %v", v.Stage())
	}
	if last := out[len(out)-1]; math.Abs(last) > 1.0/16 {
		t.Errorf("Expected silence at end of release, got %f", last)
	}
}

func TestVoiceReleaseFromSustain(t *testing.T) {
	v := sustainedVoice()
	v.SetParam(ParamRelease, 0.1)

	v.Trigger(NoteOn{Note: 60, Velocity: 1.0})
	render(v, 4410)
	v.Trigger(NoteOff{Note: 61})
	if v.Stage() == envelope.StageRelease {
		t.Fatal("NoteOff for another note released the voice")
	}

	v.Trigger(NoteOff{Note: 60})
	if v.Stage() != envelope.StageRelease {
		t.Fatalf("Expected Release, got %v", v.Stage())
	}

	out := render(v, int(0.2*sampleRate))
	if v.Active() {
		t.Error("Expected voice inactive after release")
	}
	if peak := analysis.Peak(out[len(out)-1000:]); peak != 0 {
		t.Errorf("Expected exact silence after DAC settles, got %g", peak)
	}
}

func TestVoiceSweepClip(t *testing.T) {
	v := sustainedVoice()
	v.SetParam(ParamSweepType, 1) // Up
	v.SetParam(ParamSweepAmount, 8)
	v.SetParam(ParamSweepPeriod, 1)

	v.Trigger(NoteOn{Note: 69, Velocity: 1.0})

	latched := -1
	for i := 0; i < int(0.1*sampleRate); i++ {
		v.Process(sampleRate)
		if latched < 0 {
			if v.Clipped() {
				latched = i
			}
			continue
		}
		if v.input != nibble.Zero {
			t.Fatalf("Expected DAC input Zero on every sample after the latch at %d, sample %d is %v", latched, i, v.input)
		}
	}
	if latched < 0 {
		t.Fatalf("Expected sweep to clip, frequency at %f", v.Frequency())
	}

	frozen := v.Frequency()
	out := render(v, int(0.5*sampleRate))
	if v.input != nibble.Zero || v.Frequency() != frozen {
		t.Fatalf("Expected a frozen silent voice, input %v frequency %f", v.input, v.Frequency())
	}
	for i, s := range out[len(out)-1000:] {
		if s != 0 {
			t.Fatalf("Expected silence while clipped, sample %d is %g", i, s)
		}
	}

	v.Trigger(SweepReset{Frequency: 440})
	if v.Clipped() {
		t.Fatal("Expected SweepReset to clear the clip latch")
	}
	if peak := analysis.Peak(render(v, 200)); peak == 0 {
		t.Error("Expected output to resume after SweepReset")
	}
}

func TestVoiceSweepResetOutOfBand(t *testing.T) {
	for _, freq := range []float64{-100, 0, 50000, math.NaN()} {
		for _, kind := range []oscillator.Kind{oscillator.KindSquare, oscillator.KindNoise, oscillator.KindWavetable} {
			v := sustainedVoice()
			v.SetParam(ParamOscillatorType, float64(kind))
			v.Trigger(NoteOn{Note: 69, Velocity: 1.0})
			render(v, 100)

			v.Trigger(SweepReset{Frequency: freq})
			if !v.Clipped() {
				t.Fatalf("%v at %v Hz: expected the clip latch", kind, freq)
			}
			for i := 0; i < 100; i++ {
				v.Process(sampleRate)
				if v.input != nibble.Zero {
					t.Fatalf("%v at %v Hz: sample %d fed %v to the DAC", kind, freq, i, v.input)
				}
			}

			v.Trigger(SweepReset{Frequency: 440})
			if peak := analysis.Peak(render(v, 500)); peak == 0 && kind != oscillator.KindNoise {
				t.Errorf("%v: expected output after an in-band SweepReset", kind)
			}
		}
	}
}

func TestVoicePitchBend(t *testing.T) {
	v := sustainedVoice()
	v.Trigger(NoteOn{Note: 69, Velocity: 1.0})
	v.Trigger(PitchBend{Semitones: 12})

	if v.Param(ParamPitchBend) != 12 {
		t.Errorf("Expected bend 12, got %f", v.Param(ParamPitchBend))
	}

	crossings := analysis.ZeroCrossings(render(v, 44100))
	if crossings < 1740 || crossings > 1780 {
		t.Errorf("Expected ~1760 crossings an octave up, got %d", crossings)
	}
}

func TestVoiceDetune(t *testing.T) {
	v := sustainedVoice()
	v.SetParam(ParamPitchBend, -1)
	v.SetParam(ParamDetune, 100)
	v.Trigger(NoteOn{Note: 69, Velocity: 1.0})

	freq, _ := analysis.PeakFrequency(render(v, 44100), sampleRate)
	if math.Abs(freq-440) > 2 {
		t.Errorf("Bend and detune should cancel, got %.2f Hz", freq)
	}
}

func TestVoiceAssignable(t *testing.T) {
	v := NewVoice()
	if !v.Assignable(60) {
		t.Error("Idle voice should be assignable")
	}

	v.Trigger(NoteOn{Note: 60, Velocity: 1})
	if v.Assignable(64) {
		t.Error("Held voice should not be assignable to another note")
	}
	if !v.Assignable(60) {
		t.Error("Held voice should be assignable to its own note")
	}

	v.SetParam(ParamStutterWhen, 1)
	v.Trigger(NoteOff{Note: 60})
	if !v.Assignable(64) {
		t.Error("Releasing voice should be assignable with note-off timing")
	}
}

func TestVoiceParams(t *testing.T) {
	v := NewVoice()

	want := map[ParamID]float64{
		ParamMasterVolume:   -6,
		ParamPitchBend:      0,
		ParamDetune:         0,
		ParamOscillatorType: 0,
		ParamSweepType:      0,
		ParamSweepAmount:    0,
		ParamSweepPeriod:    0,
		ParamStutterTime:    0.1,
		ParamStutterDepth:   0,
		ParamStutterWhen:    0,
		ParamAttack:         0.01,
		ParamDecay:          0.1,
		ParamSustain:        0.7,
		ParamRelease:        0.2,
		ParamSquareDuty:     2,
		ParamNoiseInterval:  1,
		ParamDacFreq:        12000,
		ParamDacQ:           0.707,
	}
	got := make(map[ParamID]float64, ParamCount)
	for id := ParamID(0); id < ParamCount; id++ {
		got[id] = v.Param(id)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Default parameters mismatch (-want +got):\n%s", diff)
	}

	t.Run("Clamped", func(t *testing.T) {
		v.SetParam(ParamDacFreq, 50000)
		if v.Param(ParamDacFreq) != 20000 {
			t.Errorf("Expected clamp to 20000, got %f", v.Param(ParamDacFreq))
		}
		v.SetParam(ParamSustain, -1)
		if v.Param(ParamSustain) != 0 {
			t.Errorf("Expected clamp to 0, got %f", v.Param(ParamSustain))
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		v.SetParam(ParamCount+1, 5)
		if v.Param(ParamCount+1) != 0 {
			t.Error("Unknown parameter should read as 0")
		}
	})
}

func TestVoiceWavetableEvents(t *testing.T) {
	v := NewVoiceSeeded(3)

	if v.Wavetable() != oscillator.SineTable() {
		t.Fatal("Expected sine wavetable by default")
	}

	v.Trigger(SetWaveTableSample{Index: 0, Value: nibble.Max})
	v.Trigger(SetWaveTableSample{Index: 99, Value: nibble.Min})
	if got := v.Wavetable()[0]; got != nibble.Max {
		t.Errorf("Expected sample 0 set to Max, got %d", got)
	}

	var table oscillator.Table
	for i := range table {
		table[i] = nibble.Min
	}
	v.Trigger(SetWaveTable{Table: table})
	if v.Wavetable() != table {
		t.Error("SetWaveTable did not replace the table")
	}

	v.Trigger(ResetWaveTableRandom{})
	random := v.Wavetable()
	other := NewVoiceSeeded(3)
	other.Trigger(ResetWaveTableRandom{})
	if diff := cmp.Diff(random, other.Wavetable()); diff != "" {
		t.Errorf("Seeded random tables differ (-first +second):\n%s", diff)
	}

	v.Trigger(ResetWaveTableSine{})
	if v.Wavetable() != oscillator.SineTable() {
		t.Error("Expected sine table after reset")
	}
}

func TestVoiceNoiseDeterministic(t *testing.T) {
	a := sustainedVoice()
	b := sustainedVoice()
	for _, v := range []*Voice{a, b} {
		v.SetParam(ParamOscillatorType, 1)
		v.Trigger(NoteOn{Note: 60, Velocity: 1})
	}

	if diff := cmp.Diff(render(a, 2000), render(b, 2000)); diff != "" {
		t.Errorf("Seeded noise voices differ:\n%s", diff)
	}
}

func TestVoiceRegisters(t *testing.T) {
	v := NewVoice()

	nr10, nr11, err := v.Registers()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if nr10 != 0 || nr11 != 0x80 {
		t.Errorf("Expected NR10=0x00 NR11=0x80, got 0x%02X 0x%02X", nr10, nr11)
	}

	v.SetParam(ParamSweepType, 3) // Triangle
	v.SetParam(ParamSweepAmount, 2)
	v.SetParam(ParamSweepPeriod, 2)
	if _, _, err := v.Registers(); !errors.Is(err, register.ErrNotRepresentable) {
		t.Errorf("Expected ErrNotRepresentable for triangle sweep, got %v", err)
	}

	v.LoadRegisters(0x5B, 0x40)
	if v.Param(ParamSweepType) != 2 || v.Param(ParamSweepPeriod) != 5 || v.Param(ParamSweepAmount) != 3 {
		t.Errorf("Unexpected sweep after load: type %f period %f amount %f",
			v.Param(ParamSweepType), v.Param(ParamSweepPeriod), v.Param(ParamSweepAmount))
	}
	if v.Param(ParamSquareDuty) != 1 {
		t.Errorf("Expected 25%% duty after load, got %f", v.Param(ParamSquareDuty))
	}
}

func TestParamIDString(t *testing.T) {
	if ParamDacFreq.String() != "DAC Frequency" {
		t.Errorf("Unexpected name %q", ParamDacFreq.String())
	}
	if got := ParamID(99).String(); got != "ParamID(99)" {
		t.Errorf("Unexpected name %q", got)
	}
}

func TestRegistryMatchesParamIDs(t *testing.T) {
	r := NewRegistry()
	if r.Count() != int32(ParamCount) {
		t.Fatalf("Expected %d parameters, got %d", ParamCount, r.Count())
	}
	for i, p := range r.All() {
		if p.ID != uint32(i) {
			t.Errorf("Parameter %q at index %d has ID %d", p.Name, i, p.ID)
		}
	}
}

func BenchmarkVoiceProcess(b *testing.B) {
	kinds := []struct {
		name string
		kind float64
	}{
		{"Square", 0},
		{"Noise", 1},
		{"Wavetable", 2},
	}
	for _, k := range kinds {
		b.Run(k.name, func(b *testing.B) {
			v := NewVoiceSeeded(1)
			v.SetParam(ParamOscillatorType, k.kind)
			v.SetParam(ParamSweepType, 3)
			v.SetParam(ParamSweepAmount, 2)
			v.SetParam(ParamSweepPeriod, 4)
			v.Trigger(NoteOn{Note: 69, Velocity: 1})

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				v.Process(sampleRate)
			}
		})
	}
}
