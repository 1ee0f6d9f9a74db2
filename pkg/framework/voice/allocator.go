// Package voice distributes notes over a fixed set of voices.
package voice

import (
	"github.com/justyntemme/chipsynth/pkg/synth"
)

// Voice represents a single voice in the synthesizer
type Voice interface {
	// Assignable reports whether the voice may take note
	Assignable(note uint8) bool
	// Active returns true if the voice is currently sounding
	Active() bool
	// Note returns the note number this voice is playing
	Note() uint8
	// NoteOn returns true while the voice's key is held
	NoteOn() bool
	// Trigger delivers an event
	Trigger(e synth.Event)
	// SetParam sets a parameter in plain units
	SetParam(id synth.ParamID, plain float64)
	// Process generates one sample
	Process(sampleRate float64) float64
	// Reset immediately silences the voice
	Reset()
}

// Allocator assigns notes to voices using only each voice's
// assignability. There is no stealing: a note no voice accepts is
// dropped. The allocator does not allocate after construction.
type Allocator struct {
	voices    []Voice
	maxVoices int

	sustainPedal   bool
	sustainedNotes [128]bool
	dropped        int
}

// NewAllocator creates a new voice allocator
func NewAllocator(voices []Voice) *Allocator {
	return &Allocator{
		voices:    voices,
		maxVoices: len(voices),
	}
}

// SetMaxVoices sets the maximum number of voices in use
func (a *Allocator) SetMaxVoices(max int) {
	if max > len(a.voices) {
		max = len(a.voices)
	}
	if max < 1 {
		max = 1
	}
	for _, v := range a.voices[max:] {
		v.Reset()
	}
	a.maxVoices = max
}

// MaxVoices returns the number of voices in use
func (a *Allocator) MaxVoices() int {
	return a.maxVoices
}

// Voices returns the voices in use
func (a *Allocator) Voices() []Voice {
	return a.voices[:a.maxVoices]
}

// NoteOn assigns note to a voice and reports whether one accepted it.
// A voice already on the note is preferred, then a silent voice, then
// any other assignable voice.
func (a *Allocator) NoteOn(note uint8, velocity float64) bool {
	idx := a.findVoice(note)
	if idx < 0 {
		a.dropped++
		return false
	}
	if note < 128 {
		a.sustainedNotes[note] = false
	}
	a.voices[idx].Trigger(synth.NoteOn{Note: note, Velocity: velocity})
	return true
}

func (a *Allocator) findVoice(note uint8) int {
	voices := a.Voices()

	for i, v := range voices {
		if v.Active() && v.Note() == note && v.Assignable(note) {
			return i
		}
	}
	for i, v := range voices {
		if !v.Active() && v.Assignable(note) {
			return i
		}
	}
	for i, v := range voices {
		if v.Assignable(note) {
			return i
		}
	}
	return -1
}

// NoteOff releases every held voice playing note, or marks it sustained
// while the pedal is down.
func (a *Allocator) NoteOff(note uint8) {
	if a.sustainPedal && note < 128 {
		a.sustainedNotes[note] = true
		return
	}
	for _, v := range a.Voices() {
		if v.NoteOn() && v.Note() == note {
			v.Trigger(synth.NoteOff{Note: note})
		}
	}
}

// SetSustainPedal sets the sustain pedal state
func (a *Allocator) SetSustainPedal(on bool) {
	a.sustainPedal = on
	if on {
		return
	}
	// Release all sustained notes
	for note, held := range a.sustainedNotes {
		if held {
			a.sustainedNotes[note] = false
			a.NoteOff(uint8(note))
		}
	}
}

// AllNotesOff releases every held voice, ignoring the pedal.
func (a *Allocator) AllNotesOff() {
	a.sustainPedal = false
	a.sustainedNotes = [128]bool{}
	for _, v := range a.Voices() {
		if v.NoteOn() {
			v.Trigger(synth.NoteOff{Note: v.Note()})
		}
	}
}

// Broadcast delivers an event to every voice.
func (a *Allocator) Broadcast(e synth.Event) {
	for _, v := range a.voices {
		v.Trigger(e)
	}
}

// SetParam sets a parameter on every voice.
func (a *Allocator) SetParam(id synth.ParamID, plain float64) {
	for _, v := range a.voices {
		v.SetParam(id, plain)
	}
}

// Process mixes one sample from the voices in use.
func (a *Allocator) Process(sampleRate float64) float64 {
	sum := 0.0
	for _, v := range a.Voices() {
		sum += v.Process(sampleRate)
	}
	return sum
}

// Reset silences all voices and clears the pedal
func (a *Allocator) Reset() {
	for _, v := range a.voices {
		v.Reset()
	}
	a.sustainPedal = false
	a.sustainedNotes = [128]bool{}
}

// GetActiveVoiceCount returns the number of sounding voices
func (a *Allocator) GetActiveVoiceCount() int {
	count := 0
	for _, v := range a.Voices() {
		if v.Active() {
			count++
		}
	}
	return count
}

// Dropped returns how many notes found no assignable voice.
func (a *Allocator) Dropped() int {
	return a.dropped
}
