package plugin

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/justyntemme/chipsynth/pkg/dsp/analysis"
	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
	"github.com/justyntemme/chipsynth/pkg/dsp/oscillator"
	"github.com/justyntemme/chipsynth/pkg/framework/debug"
	"github.com/justyntemme/chipsynth/pkg/framework/process"
	"github.com/justyntemme/chipsynth/pkg/midi"
	"github.com/justyntemme/chipsynth/pkg/synth"
)

const sampleRate = 44100.0

func newTestProcessor() *Processor {
	p := NewProcessorSeeded(DefaultInfo, 1)
	p.SetLogger(debug.New(io.Discard, "", 0))
	return p
}

func TestProcessorDefaults(t *testing.T) {
	p := newTestProcessor()

	if p.Info().ID != DefaultInfo.ID {
		t.Errorf("Expected info %q, got %q", DefaultInfo.ID, p.Info().ID)
	}

	for id, want := range synth.Defaults() {
		got := p.Param(synth.ParamID(id))
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: expected default %f, got %f", synth.ParamID(id), want, got)
		}
		n := p.Normalized(synth.ParamID(id))
		if n < 0 || n > 1 {
			t.Errorf("%s: normalized value %f out of range", synth.ParamID(id), n)
		}
	}

	if p.Param(synth.ParamCount) != 0 || p.Normalized(synth.ParamCount) != 0 {
		t.Error("Unknown parameter should read as 0")
	}
}

func TestProcessorSetParam(t *testing.T) {
	p := newTestProcessor()

	p.SetParam(synth.ParamSustain, 2)
	if got := p.Param(synth.ParamSustain); got != 1 {
		t.Errorf("Expected sustain clamped to 1, got %f", got)
	}

	p.SetNormalized(synth.ParamPitchBend, 1)
	if got := p.Param(synth.ParamPitchBend); got != 12 {
		t.Errorf("Expected bend 12, got %f", got)
	}

	p.SetParam(synth.ParamCount, 1) // ignored
}

func TestProcessorRenderA440(t *testing.T) {
	p := newTestProcessor()
	if !p.NoteOn(69, 1) {
		t.Fatal("NoteOn rejected")
	}

	out := p.Render(sampleRate, int(sampleRate))
	crossings := analysis.ZeroCrossings(out)
	if crossings < 870 || crossings > 890 {
		t.Errorf("Expected about 880 zero crossings, got %d", crossings)
	}
	if p.ActiveVoices() != 1 {
		t.Errorf("Expected 1 active voice, got %d", p.ActiveVoices())
	}
}

func TestProcessorParamAppliedNextBlock(t *testing.T) {
	p := newTestProcessor()
	p.NoteOn(69, 1)
	loud := analysis.Peak(p.Render(sampleRate, 4410))

	p.SetParam(synth.ParamMasterVolume, -60)
	quiet := analysis.Peak(p.Render(sampleRate, 4410)[2000:])

	if quiet >= loud/100 {
		t.Errorf("Expected volume change to apply, peak %f before, %f after", loud, quiet)
	}
}

func TestProcessorContext(t *testing.T) {
	p := newTestProcessor()
	ctx := process.NewContext(512, sampleRate)
	ctx.Resize(512)

	p.NoteOn(69, 1)
	p.ProcessContext(ctx)
	if analysis.Peak(ctx.Output) == 0 {
		t.Error("Expected sound in the rendered block")
	}
}

func TestProcessorMIDI(t *testing.T) {
	t.Run("velocity zero releases", func(t *testing.T) {
		p := newTestProcessor()
		p.HandleMIDI(midi.NoteOnEvent{NoteNumber: 60, Velocity: 100})
		p.Render(sampleRate, 1000)
		if p.ActiveVoices() != 1 {
			t.Fatalf("Expected 1 active voice, got %d", p.ActiveVoices())
		}

		p.HandleMIDI(midi.NoteOnEvent{NoteNumber: 60, Velocity: 0})
		p.Render(sampleRate, int(sampleRate))
		if p.ActiveVoices() != 0 {
			t.Errorf("Expected voice released, got %d active", p.ActiveVoices())
		}
	})

	t.Run("pitch bend", func(t *testing.T) {
		p := newTestProcessor()
		p.HandleMIDI(midi.PitchBendEvent{Value: -8192})
		if got := p.Param(synth.ParamPitchBend); got != -12 {
			t.Errorf("Expected -12 semitones, got %f", got)
		}
	})

	t.Run("sustain pedal", func(t *testing.T) {
		p := newTestProcessor()
		p.HandleMIDI(midi.ControlChangeEvent{Controller: midi.CCSustain, Value: 127})
		p.HandleMIDI(midi.NoteOnEvent{NoteNumber: 60, Velocity: 100})
		p.HandleMIDI(midi.NoteOffEvent{NoteNumber: 60})
		p.Render(sampleRate, int(sampleRate))
		if p.ActiveVoices() != 1 {
			t.Fatalf("Expected note held by the pedal, got %d active", p.ActiveVoices())
		}

		p.HandleMIDI(midi.ControlChangeEvent{Controller: midi.CCSustain, Value: 0})
		p.Render(sampleRate, int(sampleRate))
		if p.ActiveVoices() != 0 {
			t.Errorf("Expected release after pedal up, got %d active", p.ActiveVoices())
		}
	})

	t.Run("all notes off", func(t *testing.T) {
		p := newTestProcessor()
		p.SetVoiceCount(4)
		for _, n := range []uint8{60, 64, 67} {
			p.HandleMIDI(midi.NoteOnEvent{NoteNumber: n, Velocity: 100})
		}
		p.Render(sampleRate, 1000)
		if p.ActiveVoices() != 3 {
			t.Fatalf("Expected 3 active voices, got %d", p.ActiveVoices())
		}

		p.HandleMIDI(midi.ControlChangeEvent{Controller: midi.CCAllNotesOff})
		p.Render(sampleRate, int(sampleRate))
		if p.ActiveVoices() != 0 {
			t.Errorf("Expected all voices released, got %d active", p.ActiveVoices())
		}
	})

	t.Run("unhandled", func(t *testing.T) {
		p := newTestProcessor()
		if p.HandleMIDI(midi.ControlChangeEvent{Controller: midi.CCModWheel, Value: 10}) {
			t.Error("Expected mod wheel to be unhandled")
		}
	})
}

func TestProcessorVoicePool(t *testing.T) {
	p := newTestProcessor()

	p.NoteOn(60, 1)
	p.NoteOn(64, 1)
	p.Render(sampleRate, 100)
	if p.ActiveVoices() != 1 {
		t.Errorf("Expected 1 active voice, got %d", p.ActiveVoices())
	}
	if p.DroppedNotes() != 1 {
		t.Errorf("Expected 1 dropped note, got %d", p.DroppedNotes())
	}

	p.SetVoiceCount(100)
	p.NoteOn(67, 1)
	p.Render(sampleRate, 100)
	if p.ActiveVoices() != 2 {
		t.Errorf("Expected 2 active voices, got %d", p.ActiveVoices())
	}
}

func TestProcessorQueueFull(t *testing.T) {
	p := newTestProcessor()

	for i := 0; i < EventQueueSize; i++ {
		if !p.NoteOff(60) {
			t.Fatalf("Event %d rejected", i)
		}
	}
	if p.NoteOff(60) {
		t.Error("Expected the event to be rejected when the queue is full")
	}
	if p.Dropped() != 1 {
		t.Errorf("Expected 1 dropped event, got %d", p.Dropped())
	}

	p.Render(sampleRate, 1)
	if !p.NoteOff(60) {
		t.Error("Expected space after the audio thread drained the queue")
	}
}

func TestProcessorWavetable(t *testing.T) {
	p := newTestProcessor()

	if diff := cmp.Diff(oscillator.SineTable(), p.Wavetable()); diff != "" {
		t.Errorf("Expected sine table initially (-want +got):\n%s", diff)
	}

	if !p.SetWavetableSample(3, nibble.Max) {
		t.Fatal("SetWavetableSample rejected")
	}
	if p.Wavetable()[3] != nibble.Max {
		t.Error("Mirror should reflect the edit before rendering")
	}
	if p.SetWavetableSample(32, nibble.Max) || p.SetWavetableSample(-1, nibble.Max) {
		t.Error("Out-of-range index should be rejected")
	}

	p.Render(sampleRate, 1)
	for i, v := range p.voices {
		if v.Wavetable() != p.Wavetable() {
			t.Errorf("Voice %d table differs from the mirror", i)
		}
	}

	p.ResetWavetableRandom()
	p.Render(sampleRate, 1)
	random := p.Wavetable()
	if random == oscillator.SineTable() {
		t.Error("Expected a random table")
	}
	for i, v := range p.voices {
		if v.Wavetable() != random {
			t.Errorf("Voice %d did not receive the random table", i)
		}
	}

	p.ResetWavetableSine()
	p.Render(sampleRate, 1)
	if p.voices[0].Wavetable() != oscillator.SineTable() {
		t.Error("Expected sine table after reset")
	}

	t.Run("out of range level", func(t *testing.T) {
		p := newTestProcessor()
		if !p.SetWavetableSample(0, nibble.Nibble(100)) {
			t.Fatal("SetWavetableSample rejected")
		}
		p.Render(sampleRate, 1)
		if got := p.Wavetable()[0]; got != nibble.Max {
			t.Errorf("Expected the mirror to hold the clamped level, got %v", got)
		}
		if got := p.voices[0].Wavetable()[0]; got != p.Wavetable()[0] {
			t.Errorf("Voice holds %v, mirror holds %v", got, p.Wavetable()[0])
		}
	})

	t.Run("queue full", func(t *testing.T) {
		p := newTestProcessor()
		for p.NoteOff(60) {
		}

		var threes oscillator.Table
		for i := range threes {
			threes[i] = 3
		}
		if p.SetWavetable(threes) {
			t.Fatal("Expected SetWavetable to be rejected on a full queue")
		}
		if p.SetWavetableSample(0, 5) {
			t.Fatal("Expected SetWavetableSample to be rejected on a full queue")
		}
		if p.ResetWavetableRandom() {
			t.Fatal("Expected ResetWavetableRandom to be rejected on a full queue")
		}
		if diff := cmp.Diff(oscillator.SineTable(), p.Wavetable()); diff != "" {
			t.Errorf("Rejected edits changed the mirror (-want +got):\n%s", diff)
		}

		p.Render(sampleRate, 1)
		for i, v := range p.voices {
			if v.Wavetable() != p.Wavetable() {
				t.Errorf("Voice %d table differs from the mirror", i)
			}
		}
	})
}

func TestProcessorState(t *testing.T) {
	src := newTestProcessor()
	src.SetParam(synth.ParamOscillatorType, 2)
	src.SetParam(synth.ParamRelease, 1.25)
	src.SetWavetableSample(5, nibble.Min)

	var buf bytes.Buffer
	if err := src.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	dst := newTestProcessor()
	if err := dst.LoadState(&buf); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got := dst.Param(synth.ParamOscillatorType); got != 2 {
		t.Errorf("Expected wavetable oscillator, got %f", got)
	}
	if got := dst.Param(synth.ParamRelease); math.Abs(got-1.25) > 1e-9 {
		t.Errorf("Expected release 1.25, got %f", got)
	}
	if dst.Wavetable() != src.Wavetable() {
		t.Error("Wavetable not restored")
	}

	dst.Render(sampleRate, 1)
	if dst.voices[0].Wavetable()[5] != nibble.Min {
		t.Error("Restored wavetable did not reach the voices")
	}

	if err := dst.LoadState(bytes.NewReader([]byte("garbage"))); err == nil {
		t.Error("Expected an error for an invalid blob")
	}
}

func TestProcessorConcurrentControl(t *testing.T) {
	p := newTestProcessor()
	p.SetVoiceCount(4)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			p.SetParam(synth.ParamDacFreq, float64(1000+i))
			p.NoteOn(uint8(60+i%12), 1)
			p.NoteOff(uint8(60 + i%12))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			p.SetWavetableSample(i%32, nibble.Clamp(i%16-8))
			_ = p.Wavetable()
		}
	}()

	buf := make([]float64, 64)
	for i := 0; i < 2000; i++ {
		p.RenderInto(sampleRate, buf)
		for _, s := range buf {
			if math.IsNaN(s) || math.IsInf(s, 0) {
				t.Fatalf("Invalid sample %f", s)
			}
		}
	}
	wg.Wait()
}

func BenchmarkProcessorRenderInto(b *testing.B) {
	for _, voices := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("%dVoices", voices), func(b *testing.B) {
			p := newTestProcessor()
			p.SetVoiceCount(voices)
			for i := 0; i < voices; i++ {
				p.NoteOn(uint8(48+i*3), 1)
			}
			buf := make([]float64, 512)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.RenderInto(sampleRate, buf)
			}
		})
	}
}
