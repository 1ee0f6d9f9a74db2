// Package plugin provides the host-facing synth processor and its metadata.
package plugin

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
	"github.com/justyntemme/chipsynth/pkg/dsp/oscillator"
	"github.com/justyntemme/chipsynth/pkg/dsp/utility"
	"github.com/justyntemme/chipsynth/pkg/framework/debug"
	"github.com/justyntemme/chipsynth/pkg/framework/param"
	"github.com/justyntemme/chipsynth/pkg/framework/process"
	"github.com/justyntemme/chipsynth/pkg/framework/state"
	"github.com/justyntemme/chipsynth/pkg/framework/voice"
	"github.com/justyntemme/chipsynth/pkg/midi"
	"github.com/justyntemme/chipsynth/pkg/synth"
)

const (
	// MaxVoices is the size of the voice pool.
	MaxVoices = 16
	// DefaultVoices is the number of voices in use after construction.
	DefaultVoices = 1
	// EventQueueSize bounds the control to audio event queue.
	EventQueueSize = 256
)

type opcode uint8

const (
	opEvent opcode = iota
	opSustain
	opAllNotesOff
	opVoices
	opReset
)

// command is one queued control message. Note and wavetable traffic
// travels as synth events; pedal and pool changes only concern the
// allocator.
type command struct {
	op    opcode
	event synth.Event
	value int
}

// Processor owns the voice pool and mediates between a control thread
// (UI, MIDI, config) and a single audio thread. Control methods may be
// called from any goroutine. Process, RenderInto, Render and
// ProcessContext belong to the audio thread; they take no locks and do
// not allocate except for Render.
type Processor struct {
	info   Info
	params *param.Registry
	table  [synth.ParamCount]*param.Parameter
	state  *state.Manager

	// audio thread state
	applied   [synth.ParamCount]float64
	voices    []*synth.Voice
	allocator *voice.Allocator

	events *process.Queue[command]

	// control thread state
	mu        sync.Mutex // serializes producers on events
	wavetable atomic.Pointer[oscillator.Table]
	random    *utility.Uniform
	logger    *debug.Logger

	dropped      atomic.Uint64 // events rejected by a full queue
	droppedNotes atomic.Uint64 // notes no voice accepted
	active       atomic.Int32
}

// NewProcessor creates a processor with DefaultVoices voices in use.
func NewProcessor(info Info) *Processor {
	return newProcessor(info, func(int) *synth.Voice { return synth.NewVoice() }, utility.NewUniform())
}

// NewProcessorSeeded creates a processor whose noise tables and random
// wavetables are reproducible.
func NewProcessorSeeded(info Info, seed int64) *Processor {
	return newProcessor(info, func(i int) *synth.Voice {
		return synth.NewVoiceSeeded(seed + int64(i))
	}, utility.NewUniformSeeded(seed))
}

func newProcessor(info Info, newVoice func(int) *synth.Voice, random *utility.Uniform) *Processor {
	p := &Processor{
		info:   info,
		params: synth.NewRegistry(),
		events: process.NewQueue[command](EventQueueSize),
		random: random,
		logger: debug.Default(),
		voices: make([]*synth.Voice, MaxVoices),
	}

	pool := make([]voice.Voice, MaxVoices)
	for i := range p.voices {
		p.voices[i] = newVoice(i)
		pool[i] = p.voices[i]
	}
	p.allocator = voice.NewAllocator(pool)
	p.allocator.SetMaxVoices(DefaultVoices)

	for id := range p.table {
		p.table[id] = p.params.Get(uint32(id))
		// force every parameter through on the first block
		p.applied[id] = math.NaN()
	}

	sine := oscillator.SineTable()
	p.wavetable.Store(&sine)

	p.state = state.NewManager(p.params)
	p.state.SetCustomState(p.saveWavetable, p.loadWavetable)
	return p
}

// Info returns the processor metadata.
func (p *Processor) Info() Info {
	return p.info
}

// SetLogger replaces the logger used for control-side diagnostics.
func (p *Processor) SetLogger(l *debug.Logger) {
	if l != nil {
		p.logger = l
	}
}

// Parameters returns the parameter registry.
func (p *Processor) Parameters() *param.Registry {
	return p.params
}

// SetParam sets a parameter in plain units. The audio thread picks the
// change up at the start of its next block.
func (p *Processor) SetParam(id synth.ParamID, plain float64) {
	if id >= synth.ParamCount {
		p.logger.Warn("ignoring unknown parameter %d", uint32(id))
		return
	}
	p.table[id].SetPlainValue(plain)
}

// Param returns a parameter in plain units.
func (p *Processor) Param(id synth.ParamID) float64 {
	if id >= synth.ParamCount {
		return 0
	}
	return p.table[id].GetPlainValue()
}

// SetNormalized sets a parameter from a 0-1 host value.
func (p *Processor) SetNormalized(id synth.ParamID, normalized float64) {
	if id >= synth.ParamCount {
		p.logger.Warn("ignoring unknown parameter %d", uint32(id))
		return
	}
	p.table[id].SetValue(normalized)
}

// Normalized returns a parameter as a 0-1 host value.
func (p *Processor) Normalized(id synth.ParamID) float64 {
	if id >= synth.ParamCount {
		return 0
	}
	return p.table[id].GetValue()
}

// Trigger queues an event for the audio thread and reports whether it
// was accepted. Pitch bend is a parameter and always succeeds.
func (p *Processor) Trigger(e synth.Event) bool {
	switch e := e.(type) {
	case synth.PitchBend:
		p.SetParam(synth.ParamPitchBend, e.Semitones)
		return true
	case synth.SetWaveTable:
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.pushLocked(command{op: opEvent, event: e}) {
			return false
		}
		t := e.Table
		p.wavetable.Store(&t)
		return true
	case synth.SetWaveTableSample:
		if e.Index < 0 || e.Index >= len(oscillator.Table{}) {
			return false
		}
		e.Value = nibble.Clamp(int(e.Value))
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.pushLocked(command{op: opEvent, event: e}) {
			return false
		}
		t := *p.wavetable.Load()
		t[e.Index] = e.Value
		p.wavetable.Store(&t)
		return true
	case synth.ResetWaveTableSine:
		return p.Trigger(synth.SetWaveTable{Table: oscillator.SineTable()})
	case synth.ResetWaveTableRandom:
		// resolved here so the mirror and every voice hold the same table
		p.mu.Lock()
		t := oscillator.RandomTable(p.random)
		p.mu.Unlock()
		return p.Trigger(synth.SetWaveTable{Table: t})
	}
	return p.push(command{op: opEvent, event: e})
}

// NoteOn queues a note start; velocity is 0-1.
func (p *Processor) NoteOn(note uint8, velocity float64) bool {
	return p.Trigger(synth.NoteOn{Note: note, Velocity: velocity})
}

// NoteOff queues a note release.
func (p *Processor) NoteOff(note uint8) bool {
	return p.Trigger(synth.NoteOff{Note: note})
}

// SetSustainPedal defers note releases while on.
func (p *Processor) SetSustainPedal(on bool) bool {
	v := 0
	if on {
		v = 1
	}
	return p.push(command{op: opSustain, value: v})
}

// AllNotesOff releases every held voice.
func (p *Processor) AllNotesOff() bool {
	return p.push(command{op: opAllNotesOff})
}

// SetVoiceCount sets the number of voices in use, clamped to 1..MaxVoices.
func (p *Processor) SetVoiceCount(n int) bool {
	if n < 1 {
		n = 1
	}
	if n > MaxVoices {
		n = MaxVoices
	}
	return p.push(command{op: opVoices, value: n})
}

// Reset silences every voice.
func (p *Processor) Reset() bool {
	return p.push(command{op: opReset})
}

// HandleMIDI maps a MIDI channel message onto synth events.
func (p *Processor) HandleMIDI(e midi.Event) bool {
	switch e := e.(type) {
	case midi.NoteOnEvent:
		if e.Velocity == 0 {
			return p.NoteOff(e.NoteNumber)
		}
		return p.NoteOn(e.NoteNumber, midi.NormalizedVelocity(e.Velocity))
	case midi.NoteOffEvent:
		return p.NoteOff(e.NoteNumber)
	case midi.PitchBendEvent:
		return p.Trigger(synth.PitchBend{Semitones: e.Semitones(p.table[synth.ParamPitchBend].Max)})
	case midi.ControlChangeEvent:
		switch e.Controller {
		case midi.CCSustain:
			return p.SetSustainPedal(e.Value >= 64)
		case midi.CCAllNotesOff:
			return p.AllNotesOff()
		case midi.CCAllSoundOff:
			return p.Reset()
		case midi.CCVolume:
			master := p.table[synth.ParamMasterVolume]
			master.SetValue(float64(e.Value) / 127)
			return true
		}
	}
	p.logger.Debug("unhandled MIDI event %s", e)
	return false
}

// Wavetable returns the editor's view of the wavetable. It reflects
// every accepted edit, including ones the audio thread has not yet
// applied.
func (p *Processor) Wavetable() oscillator.Table {
	return *p.wavetable.Load()
}

// SetWavetable replaces the wavetable.
func (p *Processor) SetWavetable(t oscillator.Table) bool {
	return p.Trigger(synth.SetWaveTable{Table: t})
}

// SetWavetableSample writes one wavetable entry. Out-of-range indices
// are rejected.
func (p *Processor) SetWavetableSample(index int, value nibble.Nibble) bool {
	return p.Trigger(synth.SetWaveTableSample{Index: index, Value: value})
}

// ResetWavetableSine restores the sine table.
func (p *Processor) ResetWavetableSine() bool {
	return p.Trigger(synth.ResetWaveTableSine{})
}

// ResetWavetableRandom fills the wavetable with random levels.
func (p *Processor) ResetWavetableRandom() bool {
	return p.Trigger(synth.ResetWaveTableRandom{})
}

// SaveState writes the parameter values and the wavetable.
func (p *Processor) SaveState(w io.Writer) error {
	return p.state.Save(w)
}

// LoadState restores what SaveState wrote. Parameter changes reach the
// audio thread on its next block like any other.
func (p *Processor) LoadState(r io.Reader) error {
	if err := p.state.Load(r); err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	return nil
}

func (p *Processor) saveWavetable(w io.Writer) error {
	t := p.Wavetable()
	buf := make([]byte, len(t))
	for i, v := range t {
		buf[i] = byte(v)
	}
	_, err := w.Write(buf)
	return err
}

func (p *Processor) loadWavetable(r io.Reader) error {
	var t oscillator.Table
	buf := make([]byte, len(t))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("reading wavetable: %w", err)
	}
	for i, b := range buf {
		t[i] = nibble.Clamp(int(int8(b)))
	}
	if !p.SetWavetable(t) {
		return fmt.Errorf("wavetable not applied: event queue full")
	}
	return nil
}

// Dropped returns the number of events rejected by a full queue.
func (p *Processor) Dropped() uint64 {
	return p.dropped.Load()
}

// DroppedNotes returns the number of notes no voice could take, as of
// the last rendered block.
func (p *Processor) DroppedNotes() uint64 {
	return p.droppedNotes.Load()
}

// ActiveVoices returns the number of sounding voices as of the last
// rendered block.
func (p *Processor) ActiveVoices() int {
	return int(p.active.Load())
}

func (p *Processor) push(c command) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pushLocked(c)
}

func (p *Processor) pushLocked(c command) bool {
	if p.events.Push(c) {
		return true
	}
	p.dropped.Add(1)
	p.logger.Warn("event queue full, dropped %T", c.event)
	return false
}

// Audio thread

// Process renders one sample.
func (p *Processor) Process(sampleRate float64) float64 {
	p.prepare()
	out := p.allocator.Process(sampleRate)
	p.finish()
	return out
}

// RenderInto fills out with consecutive samples.
func (p *Processor) RenderInto(sampleRate float64, out []float64) {
	p.prepare()
	for i := range out {
		out[i] = p.allocator.Process(sampleRate)
	}
	p.finish()
}

// Render allocates and returns frames samples.
func (p *Processor) Render(sampleRate float64, frames int) []float64 {
	out := make([]float64, frames)
	p.RenderInto(sampleRate, out)
	return out
}

// ProcessContext renders a block into ctx.Output.
func (p *Processor) ProcessContext(ctx *process.Context) {
	p.RenderInto(ctx.SampleRate, ctx.Output)
}

// prepare applies queued commands and changed parameters.
func (p *Processor) prepare() {
	p.events.Drain(p.apply)

	for id, prm := range p.table {
		n := prm.GetValue()
		if n == p.applied[id] {
			continue
		}
		p.applied[id] = n
		p.allocator.SetParam(synth.ParamID(id), prm.Denormalize(n))
	}
}

func (p *Processor) apply(c command) {
	switch c.op {
	case opEvent:
		switch e := c.event.(type) {
		case synth.NoteOn:
			p.allocator.NoteOn(e.Note, e.Velocity)
		case synth.NoteOff:
			p.allocator.NoteOff(e.Note)
		default:
			p.allocator.Broadcast(e)
		}
	case opSustain:
		p.allocator.SetSustainPedal(c.value != 0)
	case opAllNotesOff:
		p.allocator.AllNotesOff()
	case opVoices:
		p.allocator.SetMaxVoices(c.value)
	case opReset:
		p.allocator.Reset()
	}
}

func (p *Processor) finish() {
	p.droppedNotes.Store(uint64(p.allocator.Dropped()))
	p.active.Store(int32(p.allocator.GetActiveVoiceCount()))
}
