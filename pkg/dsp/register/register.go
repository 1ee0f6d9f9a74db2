// Package register emulates the bit fields of the chip's control
// registers. It is a legacy layer for importing and exporting register
// images; the DSP path works on plain parameter values.
package register

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotRepresentable reports a value that does not fit its field.
var ErrNotRepresentable = errors.New("value not representable")

// Field is a bit range inside an 8-bit register.
type Field struct {
	Name  string
	Shift uint8
	Width uint8
}

// Square channel 1 register fields.
var (
	NR10Pace      = Field{Name: "NR10.pace", Shift: 4, Width: 3}
	NR10Direction = Field{Name: "NR10.direction", Shift: 3, Width: 1}
	NR10Step      = Field{Name: "NR10.step", Shift: 0, Width: 3}
	NR11Duty      = Field{Name: "NR11.duty", Shift: 6, Width: 2}
	NR11Length    = Field{Name: "NR11.length", Shift: 0, Width: 6}
)

// Max returns the largest value the field holds.
func (f Field) Max() uint8 {
	return uint8(1<<f.Width - 1)
}

func (f Field) mask() uint8 {
	return f.Max() << f.Shift
}

// Insert returns reg with the field set to v.
func (f Field) Insert(reg, v uint8) (uint8, error) {
	if v > f.Max() {
		return reg, fmt.Errorf("%s=%d in %d bits: %w", f.Name, v, f.Width, ErrNotRepresentable)
	}
	return reg&^f.mask() | v<<f.Shift, nil
}

// Extract returns the field value held in reg.
func (f Field) Extract(reg uint8) uint8 {
	return (reg & f.mask()) >> f.Shift
}

// Encode converts a plain parameter value to a field value. The value must
// be a whole number within the field.
func (f Field) Encode(v float64) (uint8, error) {
	if v < 0 || v != math.Trunc(v) || v > float64(f.Max()) {
		return 0, fmt.Errorf("%s=%g in %d bits: %w", f.Name, v, f.Width, ErrNotRepresentable)
	}
	return uint8(v), nil
}

// Set encodes v and inserts it into reg.
func (f Field) Set(reg uint8, v float64) (uint8, error) {
	bits, err := f.Encode(v)
	if err != nil {
		return reg, err
	}
	return f.Insert(reg, bits)
}
