// Package envelope provides the chip amplitude envelope with its embedded
// stutter retrigger effect.
package envelope

import (
	"fmt"
	"math"

	"github.com/justyntemme/chipsynth/pkg/dsp"
)

// Stage represents the current envelope stage
type Stage int

const (
	// StageOff is both the initial and the terminal stage
	StageOff Stage = iota
	// StageAttack ramps linearly up to full level
	StageAttack
	// StageDecay falls linearly to the sustain level
	StageDecay
	// StageSustain holds the sustain level until note off
	StageSustain
	// StageRelease falls linearly to silence
	StageRelease
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageOff:
		return "Off"
	case StageAttack:
		return "Attack"
	case StageDecay:
		return "Decay"
	case StageSustain:
		return "Sustain"
	case StageRelease:
		return "Release"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Silent reports whether the stage is Release or Off.
func (s Stage) Silent() bool {
	return s == StageRelease || s == StageOff
}

// DiscreteLoudness truncates v to the 1/16 steps of the volume register.
func DiscreteLoudness(v float64) float64 {
	return math.Floor(v*dsp.LoudnessSteps) / dsp.LoudnessSteps
}

// Envelope is a linear ADSR driven by elapsed samples since the last
// stage transition. Segment curves start from the value held when the
// previous stage was left.
type Envelope struct {
	// Parameters (seconds for A, D, R and 0-1 for S)
	attack  float64
	decay   float64
	sustain float64
	release float64

	// State
	stage          Stage
	elapsed        int64
	lastStateValue float64
	value          float64

	note     uint8
	noteOn   bool
	velocity float64

	stutter Stutter
}

// New creates an envelope in the Off stage.
func New() *Envelope {
	return &Envelope{
		attack:   0.01,
		decay:    0.1,
		sustain:  0.7,
		release:  0.2,
		velocity: 1.0,
		stutter:  newStutter(),
	}
}

// SetAttack sets the attack time in seconds
func (e *Envelope) SetAttack(seconds float64) {
	e.attack = math.Max(0, seconds)
}

// SetDecay sets the decay time in seconds
func (e *Envelope) SetDecay(seconds float64) {
	e.decay = math.Max(0, seconds)
}

// SetSustain sets the sustain level (0-1)
func (e *Envelope) SetSustain(level float64) {
	e.sustain = dsp.Clamp(level, 0, 1)
}

// SetRelease sets the release time in seconds
func (e *Envelope) SetRelease(seconds float64) {
	e.release = math.Max(0, seconds)
}

// SetADSR sets all parameters at once
func (e *Envelope) SetADSR(attack, decay, sustain, release float64) {
	e.SetAttack(attack)
	e.SetDecay(decay)
	e.SetSustain(sustain)
	e.SetRelease(release)
}

// ADSR returns the current attack, decay, sustain and release settings.
func (e *Envelope) ADSR() (attack, decay, sustain, release float64) {
	return e.attack, e.decay, e.sustain, e.release
}

// Stutter returns the embedded stutter for configuration.
func (e *Envelope) Stutter() *Stutter {
	return &e.stutter
}

// NoteOn starts the attack stage for note at velocity (0-1).
func (e *Envelope) NoteOn(note uint8, velocity float64) {
	e.note = note
	e.noteOn = true
	e.velocity = dsp.Clamp(velocity, 0, 1)
	e.enterAttack()

	if e.stutter.when == TimingNoteOn {
		e.stutter.arm()
	} else {
		e.stutter.stop()
	}
}

// NoteOff moves a sounding envelope into release.
func (e *Envelope) NoteOff() {
	e.noteOn = false
	if e.stage == StageOff || e.stage == StageRelease {
		return
	}

	e.lastStateValue = e.value
	e.enter(StageRelease)

	if e.stutter.when == TimingNoteOff {
		e.stutter.arm()
	}
}

// Reset silences the envelope immediately.
func (e *Envelope) Reset() {
	e.enter(StageOff)
	e.value = 0
	e.lastStateValue = 0
	e.noteOn = false
	e.stutter.stop()
}

func (e *Envelope) enter(stage Stage) {
	e.stage = stage
	e.elapsed = 0
}

func (e *Envelope) enterAttack() {
	e.enter(StageAttack)
	e.value = 0
}

// Stage returns the current envelope stage
func (e *Envelope) Stage() Stage {
	return e.stage
}

// IsNoteOn reports whether a note is held.
func (e *Envelope) IsNoteOn() bool {
	return e.noteOn
}

// Note returns the last note number received.
func (e *Envelope) Note() uint8 {
	return e.note
}

// Velocity returns the note velocity.
func (e *Envelope) Velocity() float64 {
	return e.velocity
}

// Value returns the raw segment value of the last processed sample.
func (e *Envelope) Value() float64 {
	return e.value
}

// Assignable reports whether this envelope's voice may take note. With
// note-on stutter timing a voice is free once its key is up; with
// note-off timing it must be releasing, off or stuttering.
func (e *Envelope) Assignable(note uint8) bool {
	if note == e.note {
		return true
	}
	switch e.stutter.when {
	case TimingNoteOn:
		return !e.noteOn
	default:
		return e.stage.Silent() || e.stutter.active
	}
}

// Process advances by one sample and returns the output level: the
// quantized segment value scaled by stutter and note velocity.
func (e *Envelope) Process(sampleRate float64) float64 {
	e.processStutter(sampleRate)

	e.elapsed++
	s := float64(e.elapsed) / sampleRate

	switch e.stage {
	case StageAttack:
		if s > e.attack {
			e.lastStateValue = 1.0
			e.enter(StageDecay)
			s = 0
		}
	case StageDecay:
		if s > e.decay {
			e.lastStateValue = e.sustain
			e.enter(StageSustain)
			s = 0
		}
	case StageRelease:
		if s > e.release {
			e.enter(StageOff)
			s = 0
		}
	}

	e.value = dsp.Normalize(e.segment(s))

	if e.stage == StageOff && e.stutter.when == TimingNoteOn {
		e.stutter.stop()
	}

	out := DiscreteLoudness(e.value)
	if e.stutter.active {
		out *= e.stutter.velocity
	}
	return dsp.Normalize(out * e.velocity)
}

func (e *Envelope) segment(s float64) float64 {
	switch e.stage {
	case StageAttack:
		if e.attack <= 0 {
			return 1.0
		}
		return math.Min(1.0, s/e.attack)
	case StageDecay:
		if e.decay <= 0 {
			return e.sustain
		}
		return e.lastStateValue + (e.sustain-e.lastStateValue)*math.Min(1.0, s/e.decay)
	case StageSustain:
		return e.sustain
	case StageRelease:
		if e.release <= 0 {
			return 0
		}
		return math.Max(0, e.lastStateValue*(1-s/e.release))
	default:
		return 0
	}
}

func (e *Envelope) processStutter(sampleRate float64) {
	st := &e.stutter
	if !st.active {
		return
	}
	// Note-on stutter only retriggers while the key is held.
	if st.when == TimingNoteOn && !e.noteOn {
		return
	}

	st.elapsed++
	if float64(st.elapsed)/sampleRate <= st.time {
		return
	}

	st.elapsed = 0
	st.velocity = dsp.Normalize(st.velocity - (1 - st.depth/100))
	if st.velocity < dsp.StutterFloor {
		e.enter(StageOff)
		e.value = 0
		st.active = false
		return
	}
	e.enterAttack()
}
