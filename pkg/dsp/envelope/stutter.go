package envelope

import (
	"fmt"
	"math"

	"github.com/justyntemme/chipsynth/pkg/dsp"
)

// Timing selects which note event arms the stutter.
type Timing int

const (
	// TimingNoteOn arms on note on and retriggers while the key is held
	TimingNoteOn Timing = iota
	// TimingNoteOff arms on note off and echoes after the key is released
	TimingNoteOff
)

// String returns the timing name.
func (t Timing) String() string {
	switch t {
	case TimingNoteOn:
		return "NoteOn"
	case TimingNoteOff:
		return "NoteOff"
	default:
		return fmt.Sprintf("Timing(%d)", int(t))
	}
}

// Stutter retriggers the envelope every time seconds, lowering its
// velocity by 1-depth/100 on each retrigger. A depth of 0 disables it.
type Stutter struct {
	time  float64 // seconds
	depth float64 // percent
	when  Timing

	active   bool
	elapsed  int64
	velocity float64
}

func newStutter() Stutter {
	return Stutter{time: 0.1, velocity: 1.0}
}

// SetTime sets the retrigger period in seconds.
func (s *Stutter) SetTime(seconds float64) {
	s.time = math.Max(0, seconds)
}

// Time returns the retrigger period in seconds.
func (s *Stutter) Time() float64 {
	return s.time
}

// SetDepth sets the depth percentage; 0 stops any stutter in progress.
func (s *Stutter) SetDepth(percent float64) {
	s.depth = dsp.Clamp(percent, 0, 100)
	if s.depth == 0 {
		s.stop()
	}
}

// Depth returns the depth percentage.
func (s *Stutter) Depth() float64 {
	return s.depth
}

// SetTiming selects the arming event.
func (s *Stutter) SetTiming(t Timing) {
	s.when = t
}

// Timing returns the arming event.
func (s *Stutter) Timing() Timing {
	return s.when
}

// Active reports whether the stutter is running.
func (s *Stutter) Active() bool {
	return s.active
}

// Velocity returns the current stutter multiplier.
func (s *Stutter) Velocity() float64 {
	return s.velocity
}

func (s *Stutter) arm() {
	s.elapsed = 0
	s.velocity = 1.0
	s.active = s.depth > 0
}

func (s *Stutter) stop() {
	s.active = false
	s.elapsed = 0
	s.velocity = 1.0
}
