// Package utility provides common DSP utility functions and processors.
package utility

import (
	"math/rand"
)

// Uniform draws white noise in [-1, 1). It backs the noise oscillator
// table and random wavetable content.
type Uniform struct {
	rand *rand.Rand
}

// NewUniform creates a source seeded from the global generator, so two
// instances never share a sequence.
func NewUniform() *Uniform {
	return &Uniform{rand: rand.New(rand.NewSource(rand.Int63()))}
}

// NewUniformSeeded creates a reproducible source.
func NewUniformSeeded(seed int64) *Uniform {
	return &Uniform{rand: rand.New(rand.NewSource(seed))}
}

// SetSeed restarts the sequence from seed.
func (u *Uniform) SetSeed(seed int64) {
	u.rand = rand.New(rand.NewSource(seed))
}

// Next returns the next sample in [-1, 1).
func (u *Uniform) Next() float64 {
	return u.rand.Float64()*2.0 - 1.0
}

// Generate fills a buffer with noise.
func (u *Uniform) Generate(buffer []float64) {
	for i := range buffer {
		buffer[i] = u.Next()
	}
}
