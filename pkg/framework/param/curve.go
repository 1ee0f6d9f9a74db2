package param

import "math"

// Curve maps between a normalized value (0-1) and a plain value in
// physical units. LinearCurve and ExponentialCurve are the only
// implementations.
type Curve interface {
	Normalize(plain float64) float64
	Denormalize(normalized float64) float64
	Bounds() (min, max float64)
}

// LinearCurve maps 0-1 linearly onto Min-Max.
type LinearCurve struct {
	Min float64
	Max float64
}

// Normalize converts plain value to normalized (0-1)
func (c LinearCurve) Normalize(plain float64) float64 {
	if c.Max <= c.Min {
		return 0
	}
	return clamp01((plain - c.Min) / (c.Max - c.Min))
}

// Denormalize converts normalized (0-1) to plain value
func (c LinearCurve) Denormalize(normalized float64) float64 {
	return c.Min + clamp01(normalized)*(c.Max-c.Min)
}

// Bounds returns the plain range.
func (c LinearCurve) Bounds() (float64, float64) {
	return c.Min, c.Max
}

// ExponentialCurve maps 0-1 onto Zero-One along an exponential of the
// given Factor, then clamps the result to Min-Max:
//
//	plain = Zero + (One-Zero) * (e^(Factor*n) - 1) / (e^Factor - 1)
//
// Positive factors give more resolution near Zero. A zero factor is linear.
type ExponentialCurve struct {
	Zero   float64 // plain value at normalized 0
	One    float64 // plain value at normalized 1
	Min    float64
	Max    float64
	Factor float64
}

// Normalize converts plain value to normalized (0-1)
func (c ExponentialCurve) Normalize(plain float64) float64 {
	span := c.One - c.Zero
	if span == 0 {
		return 0
	}
	plain = clamp(plain, c.Min, c.Max)
	if c.Factor == 0 {
		return clamp01((plain - c.Zero) / span)
	}

	x := (plain - c.Zero) / span * math.Expm1(c.Factor)
	if x <= -1 {
		return 0
	}
	return clamp01(math.Log1p(x) / c.Factor)
}

// Denormalize converts normalized (0-1) to plain value
func (c ExponentialCurve) Denormalize(normalized float64) float64 {
	normalized = clamp01(normalized)
	if c.Factor == 0 {
		return clamp(c.Zero+(c.One-c.Zero)*normalized, c.Min, c.Max)
	}
	shape := math.Expm1(c.Factor*normalized) / math.Expm1(c.Factor)
	return clamp(c.Zero+(c.One-c.Zero)*shape, c.Min, c.Max)
}

// Bounds returns the plain range.
func (c ExponentialCurve) Bounds() (float64, float64) {
	return c.Min, c.Max
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
