// Package sweep provides the periodic frequency sweep of the pulse channel.
package sweep

import (
	"fmt"
	"math"

	"github.com/justyntemme/chipsynth/pkg/dsp"
	"github.com/justyntemme/chipsynth/pkg/dsp/register"
)

// Mode selects the sweep direction
type Mode int

const (
	// ModeNone disables the sweep
	ModeNone Mode = iota
	// ModeUp raises the frequency every tick
	ModeUp
	// ModeDown lowers the frequency every tick
	ModeDown
	// ModeTriangle bends up, down and back up over four quarter periods
	ModeTriangle
)

// String returns the display name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "None"
	case ModeUp:
		return "Up"
	case ModeDown:
		return "Down"
	case ModeTriangle:
		return "Triangle"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Sweep modulates a shadow copy of the note frequency on a 128 Hz timer.
// Once the shadow frequency leaves the audible band the sweep latches
// Clipped and stays silent until Reset.
type Sweep struct {
	mode   Mode
	amount float64
	period float64 // in 1/128 s ticks

	shadow  float64
	timer   float64 // seconds
	clipped bool
}

// New creates a disabled sweep.
func New() *Sweep {
	return &Sweep{shadow: dsp.ReferenceFrequency}
}

// SetMode selects the sweep mode.
func (s *Sweep) SetMode(m Mode) {
	s.mode = m
}

// Mode returns the sweep mode.
func (s *Sweep) Mode() Mode {
	return s.mode
}

// SetAmount sets the shift amount; each tick moves by shadow*2^(amount-8.1).
func (s *Sweep) SetAmount(amount float64) {
	s.amount = amount
}

// Amount returns the shift amount.
func (s *Sweep) Amount() float64 {
	return s.amount
}

// SetPeriod sets the tick period in units of 1/128 s.
func (s *Sweep) SetPeriod(period float64) {
	s.period = period
}

// Period returns the tick period.
func (s *Sweep) Period() float64 {
	return s.period
}

// Reset reseeds the shadow frequency and clears the clip latch. A
// frequency outside the audible band latches it again immediately.
func (s *Sweep) Reset(freq float64) {
	s.shadow = freq
	s.timer = 0
	s.clipped = !inBand(freq)
}

func inBand(freq float64) bool {
	return freq >= dsp.SweepMinFrequency && freq <= dsp.SweepMaxFrequency
}

// Clipped reports whether the shadow frequency has left the audible band.
func (s *Sweep) Clipped() bool {
	return s.clipped
}

// Shadow returns the tracked frequency.
func (s *Sweep) Shadow() float64 {
	return s.shadow
}

func (s *Sweep) step() float64 {
	return dsp.Normalize(s.shadow * math.Pow(2, s.amount-8.1))
}

// Process advances the timer by one sample and returns the frequency delta
// to add to the running frequency.
func (s *Sweep) Process(sampleRate float64) float64 {
	if s.mode == ModeNone || s.amount == 0 || s.period == 0 || s.clipped {
		return 0
	}

	tick := s.period / dsp.SweepTickRate
	s.timer = dsp.Normalize(s.timer + 1.0/sampleRate)

	var delta float64
	switch s.mode {
	case ModeUp, ModeDown:
		if s.timer < tick {
			return 0
		}
		s.timer = 0
		delta = s.step()
		if s.mode == ModeDown {
			delta = -delta
		}

	case ModeTriangle:
		delta = dsp.Normalize(s.step() / (tick * sampleRate))
		switch {
		case s.timer < tick:
		case s.timer < 3*tick:
			delta = -delta
		case s.timer >= 4*tick:
			s.timer = 0
		}

	default:
		return 0
	}

	s.shadow = dsp.Normalize(s.shadow + delta)
	if !inBand(s.shadow) {
		s.clipped = true
	}
	return delta
}

// Register encodes the sweep settings as an NR10 image. Triangle mode and
// non-integral or oversized amounts have no register form.
func (s *Sweep) Register() (uint8, error) {
	var reg uint8
	var err error

	switch s.mode {
	case ModeNone:
		return 0, nil
	case ModeUp:
	case ModeDown:
		if reg, err = register.NR10Direction.Insert(reg, 1); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("sweep mode %s: %w", s.mode, register.ErrNotRepresentable)
	}

	if reg, err = register.NR10Pace.Set(reg, s.period); err != nil {
		return 0, err
	}
	if reg, err = register.NR10Step.Set(reg, s.amount); err != nil {
		return 0, err
	}
	return reg, nil
}

// LoadRegister applies an NR10 image.
func (s *Sweep) LoadRegister(reg uint8) {
	s.period = float64(register.NR10Pace.Extract(reg))
	s.amount = float64(register.NR10Step.Extract(reg))
	switch {
	case s.period == 0:
		s.mode = ModeNone
	case register.NR10Direction.Extract(reg) == 1:
		s.mode = ModeDown
	default:
		s.mode = ModeUp
	}
}
