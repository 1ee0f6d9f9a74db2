package analysis

import (
	"math"
	"sync"
)

// PeakMeter measures peak signal levels
type PeakMeter struct {
	peak       float64
	hold       float64
	holdTime   float64
	decayRate  float64
	sampleRate float64
	holdCount  int
	mu         sync.Mutex
}

// NewPeakMeter creates a new peak meter
func NewPeakMeter(sampleRate float64) *PeakMeter {
	return &PeakMeter{
		sampleRate: sampleRate,
		holdTime:   1.0,  // 1 second default
		decayRate:  20.0, // 20 dB/second
	}
}

// SetHoldTime sets the peak hold time in seconds
func (pm *PeakMeter) SetHoldTime(seconds float64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.holdTime = seconds
}

// SetDecayRate sets the peak decay rate in dB/second
func (pm *PeakMeter) SetDecayRate(dbPerSecond float64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.decayRate = dbPerSecond
}

// Process updates the peak meter with new samples
func (pm *PeakMeter) Process(samples []float64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	blockPeak := Peak(samples)

	// Decay, converting dB/s to a linear factor per sample
	decayPerSample := pm.decayRate / pm.sampleRate / 20.0 * math.Log(10)
	pm.peak *= math.Exp(-decayPerSample * float64(len(samples)))
	if blockPeak > pm.peak {
		pm.peak = blockPeak
	}

	if blockPeak > pm.hold {
		pm.hold = blockPeak
		pm.holdCount = int(pm.holdTime * pm.sampleRate)
	} else {
		pm.holdCount -= len(samples)
		if pm.holdCount <= 0 {
			pm.hold = pm.peak
			pm.holdCount = 0
		}
	}
}

// GetPeak returns the current peak level (linear)
func (pm *PeakMeter) GetPeak() float64 {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.peak
}

// GetPeakDB returns the current peak level in decibels
func (pm *PeakMeter) GetPeakDB() float64 {
	return LinearToDB(pm.GetPeak())
}

// GetHold returns the held peak level (linear)
func (pm *PeakMeter) GetHold() float64 {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.hold
}

// Reset clears the peak and hold values
func (pm *PeakMeter) Reset() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.peak = 0
	pm.hold = 0
	pm.holdCount = 0
}

// RMSMeter measures RMS (Root Mean Square) levels
type RMSMeter struct {
	windowSize int
	buffer     []float64
	writePos   int
	sum        float64
	count      int
	mu         sync.Mutex
}

// NewRMSMeter creates a new RMS meter with specified window size
func NewRMSMeter(windowSizeSamples int) *RMSMeter {
	if windowSizeSamples < 1 {
		windowSizeSamples = 1
	}
	return &RMSMeter{
		windowSize: windowSizeSamples,
		buffer:     make([]float64, windowSizeSamples),
	}
}

// Process updates the RMS meter with new samples
func (rm *RMSMeter) Process(samples []float64) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, sample := range samples {
		// Remove old value from sum
		oldValue := rm.buffer[rm.writePos]
		rm.sum -= oldValue * oldValue

		rm.buffer[rm.writePos] = sample
		rm.sum += sample * sample

		rm.writePos = (rm.writePos + 1) % rm.windowSize
		if rm.count < rm.windowSize {
			rm.count++
		}
	}
	// Running sums drift below zero on silence.
	if rm.sum < 0 {
		rm.sum = 0
	}
}

// GetRMS returns the current RMS level (linear)
func (rm *RMSMeter) GetRMS() float64 {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.count == 0 {
		return 0
	}
	return math.Sqrt(rm.sum / float64(rm.count))
}

// GetRMSDB returns the current RMS level in decibels
func (rm *RMSMeter) GetRMSDB() float64 {
	return LinearToDB(rm.GetRMS())
}

// Reset clears the RMS buffer
func (rm *RMSMeter) Reset() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for i := range rm.buffer {
		rm.buffer[i] = 0
	}
	rm.sum = 0
	rm.count = 0
	rm.writePos = 0
}

// ZeroCrossingCounter counts sign changes across successive blocks.
// Exact zeros do not count as a crossing; the sign before them is kept.
type ZeroCrossingCounter struct {
	sign  int
	count int
	mu    sync.Mutex
}

// Process counts crossings in samples
func (z *ZeroCrossingCounter) Process(samples []float64) {
	z.mu.Lock()
	defer z.mu.Unlock()

	for _, s := range samples {
		var sign int
		switch {
		case s > 0:
			sign = 1
		case s < 0:
			sign = -1
		default:
			continue
		}
		if z.sign != 0 && sign != z.sign {
			z.count++
		}
		z.sign = sign
	}
}

// Count returns the number of crossings seen
func (z *ZeroCrossingCounter) Count() int {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.count
}

// Reset clears the count
func (z *ZeroCrossingCounter) Reset() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.sign = 0
	z.count = 0
}

// ZeroCrossings counts the sign changes in samples.
func ZeroCrossings(samples []float64) int {
	var z ZeroCrossingCounter
	z.Process(samples)
	return z.Count()
}

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// LinearToDB converts a linear level to decibels, -Inf for silence.
func LinearToDB(v float64) float64 {
	if v > 0 {
		return 20.0 * math.Log10(v)
	}
	return math.Inf(-1)
}
