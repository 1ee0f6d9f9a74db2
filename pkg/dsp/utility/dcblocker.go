package utility

import (
	"github.com/justyntemme/chipsynth/pkg/dsp"
)

// DCBlocker removes DC offset with a first-order high-pass:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// Narrow pulse waves sit well off centre; exported renders pass through
// one of these when asked.
type DCBlocker struct {
	x1, y1      float64
	coefficient float64
}

// NewDCBlocker creates a DC blocker. The cutoff is typically 5-20 Hz.
func NewDCBlocker(cutoffHz, sampleRate float64) *DCBlocker {
	dc := &DCBlocker{}
	dc.SetCutoff(cutoffHz, sampleRate)
	return dc
}

// SetCutoff updates the cutoff frequency.
func (dc *DCBlocker) SetCutoff(cutoffHz, sampleRate float64) {
	// R = 1 - 2*pi*fc/fs, clamped for stability
	dc.coefficient = dsp.Clamp(1.0-(dsp.TwoPi*cutoffHz/sampleRate), 0.9, 0.9999)
}

// Coefficient returns the feedback coefficient R.
func (dc *DCBlocker) Coefficient() float64 {
	return dc.coefficient
}

// Process filters one sample.
func (dc *DCBlocker) Process(input float64) float64 {
	output := dsp.Normalize(input - dc.x1 + dc.coefficient*dc.y1)
	dc.x1 = input
	dc.y1 = output
	return output
}

// ProcessBuffer filters a buffer in place.
func (dc *DCBlocker) ProcessBuffer(buffer []float64) {
	for i, x := range buffer {
		buffer[i] = dc.Process(x)
	}
}

// Reset clears the filter state.
func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
