// Package nibble provides the 4-bit signed sample type produced by every
// chip oscillator.
package nibble

import "math"

// Nibble is a signed sample quantized to 16 levels in [-8, +7].
// Negative levels map to n/8 and positive levels to n/7, so the range
// covers [-1.0, +1.0] with the asymmetric split of a two's-complement
// 4-bit integer.
type Nibble int8

const (
	// Min is the lowest level, -1.0.
	Min Nibble = -8
	// Zero is silence.
	Zero Nibble = 0
	// Max is the highest level, +1.0.
	Max Nibble = 7
)

// Levels is the number of representable values.
const Levels = 16

// FromFloat clamps f to [-1, 1] and rounds it onto the nearest level.
func FromFloat(f float64) Nibble {
	if math.IsNaN(f) {
		return Zero
	}
	switch {
	case f >= 1:
		return Max
	case f <= -1:
		return Min
	case f >= 0:
		return Nibble(math.Round(f * float64(Max)))
	default:
		return Nibble(math.Round(f * -float64(Min)))
	}
}

// Clamp converts an integer level into range.
func Clamp(v int) Nibble {
	if v > int(Max) {
		return Max
	}
	if v < int(Min) {
		return Min
	}
	return Nibble(v)
}

// Float returns the exact floating point value of n.
func (n Nibble) Float() float64 {
	switch {
	case n == 0:
		return 0
	case n < 0:
		return float64(n) / -float64(Min)
	default:
		return float64(n) / float64(Max)
	}
}

// Add returns n+o clamped into range.
func (n Nibble) Add(o Nibble) Nibble {
	return Clamp(int(n) + int(o))
}

// Mul scales n by f and requantizes the result.
func (n Nibble) Mul(f float64) Nibble {
	return FromFloat(n.Float() * f)
}

// All returns every level from Min to Max.
func All() [Levels]Nibble {
	var out [Levels]Nibble
	for i := range out {
		out[i] = Min + Nibble(i)
	}
	return out
}
