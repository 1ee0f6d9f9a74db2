package dsp

import "math"

// Normalize flushes subnormal values to zero. NaN and infinities also
// become zero so a single bad intermediate cannot poison filter state.
func Normalize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x > -MinNormal && x < MinNormal {
		return 0
	}
	return x
}

// NoteToFrequency converts a note number to Hz using equal temperament
// around A4 = 440 Hz.
func NoteToFrequency(note float64) float64 {
	return ReferenceFrequency * math.Pow(2, (note-ReferenceNote)/12)
}

// CentsToRatio converts a pitch offset in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return Normalize(math.Pow(2, cents/1200))
}

// DBToLinear converts decibels to a linear gain factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
