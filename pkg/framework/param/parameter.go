package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Parameter represents a synth parameter. The normalized value is stored
// atomically so the audio thread can read it without locking.
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // normalized
	StepCount    int32
	Flags        uint32

	curve Curve

	// Atomic value for lock-free access in audio thread
	value atomic.Uint64

	// Value formatting
	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
	IsList      uint32 = 1 << 3
	IsHidden    uint32 = 1 << 4
)

// Curve returns the parameter's value curve.
func (p *Parameter) Curve() Curve {
	return p.curve
}

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value (0-1)
func (p *Parameter) SetValue(value float64) {
	if math.IsNaN(value) {
		return
	}
	p.value.Store(math.Float64bits(clamp01(value)))
}

// GetPlainValue converts normalized to plain value
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetPlainValue converts plain to normalized value
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// DefaultPlainValue returns the default in plain units.
func (p *Parameter) DefaultPlainValue() float64 {
	return p.Denormalize(p.DefaultValue)
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.SetValue(p.DefaultValue)
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns formatted parameter value
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)

	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	// Default formatting
	if p.StepCount > 0 {
		// For discrete parameters, show integer
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParseValue parses string to normalized value
func (p *Parameter) ParseValue(str string) (float64, error) {
	parse := p.parseFunc
	if parse == nil {
		parse = func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		}
	}

	plain, err := parse(str)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", p.Name, err)
	}
	return p.Normalize(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	return p.quantize(p.curve.Normalize(plain))
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.curve.Denormalize(p.quantize(normalized))
}

// quantize snaps a normalized value onto the parameter's steps.
func (p *Parameter) quantize(normalized float64) float64 {
	if p.StepCount <= 0 {
		return normalized
	}
	steps := float64(p.StepCount)
	return math.Round(clamp01(normalized)*steps) / steps
}
