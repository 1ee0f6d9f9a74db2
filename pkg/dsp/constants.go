// Package dsp provides the numeric helpers shared by the chip voice stages.
package dsp

// Chip and tuning constants used throughout the DSP packages.
const (
	// Tuning reference
	ReferenceNote      = 69    // A4
	ReferenceFrequency = 440.0 // Hz

	// Sweep limits; a shadow frequency outside this band latches the clip flag.
	SweepMinFrequency = 10.0
	SweepMaxFrequency = 10000.0
	SweepTickRate     = 128.0 // Hz

	// Loudness steps of the emulated volume register
	LoudnessSteps = 16

	// Stutter velocity below which the envelope is forced off
	StutterFloor = 0.05

	// Wavetable and noise table sizes
	WavetableSize  = 32
	NoiseTableSize = 8192

	// Common sample rates
	SampleRate44k1 = 44100.0
	SampleRate48k  = 48000.0

	// Phase constants
	TwoPi = 6.283185307179586
	Pi    = 3.141592653589793

	// Butterworth response
	DefaultQ = 0.707

	// Highest usable filter frequency as a fraction of the sample rate
	MaxFilterRatio = 0.49

	// Smallest positive normal float64; anything smaller in magnitude is subnormal.
	MinNormal = 2.2250738585072014e-308
)
