package param

// Builder provides a fluent API for creating parameters
type Builder struct {
	param        *Parameter
	defaultPlain float64
	exponential  *float64
}

// New creates a new parameter builder with a linear 0-1 range
func New(id uint32, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:        id,
			Name:      name,
			ShortName: name,
			Min:       0,
			Max:       1,
			Flags:     CanAutomate,
		},
	}
}

// ShortName sets the short name
func (b *Builder) ShortName(name string) *Builder {
	b.param.ShortName = name
	return b
}

// Range sets the min and max values
func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min = min
	b.param.Max = max
	return b
}

// Exponential switches to an exponential curve over the range with the
// given shaping factor.
func (b *Builder) Exponential(factor float64) *Builder {
	b.exponential = &factor
	return b
}

// Curve sets an explicit curve; its bounds replace the range.
func (b *Builder) Curve(c Curve) *Builder {
	b.param.curve = c
	b.param.Min, b.param.Max = c.Bounds()
	return b
}

// Default sets the default value (in plain range, not normalized)
func (b *Builder) Default(value float64) *Builder {
	b.defaultPlain = value
	return b
}

// Unit sets the unit string
func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	return b
}

// Steps sets the number of discrete steps
func (b *Builder) Steps(count int32) *Builder {
	b.param.StepCount = count
	return b
}

// Flags sets parameter flags
func (b *Builder) Flags(flags uint32) *Builder {
	b.param.Flags = flags
	return b
}

// ReadOnly marks the parameter as read-only
func (b *Builder) ReadOnly() *Builder {
	b.param.Flags |= IsReadOnly
	b.param.Flags &^= CanAutomate // Remove automation flag
	return b
}

// Hidden marks the parameter as hidden
func (b *Builder) Hidden() *Builder {
	b.param.Flags |= IsHidden
	return b
}

// Formatter sets custom value formatting and parsing
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build returns the configured parameter
func (b *Builder) Build() *Parameter {
	p := b.param
	if p.curve == nil {
		if b.exponential != nil {
			p.curve = ExponentialCurve{Zero: p.Min, One: p.Max, Min: p.Min, Max: p.Max, Factor: *b.exponential}
		} else {
			p.curve = LinearCurve{Min: p.Min, Max: p.Max}
		}
	}

	// Initialize with default value
	p.DefaultValue = p.Normalize(b.defaultPlain)
	p.SetValue(p.DefaultValue)
	return p
}
