package param

import (
	"fmt"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a parameter builder for a multiple choice parameter.
// Option values must be ascending; the default is the first option.
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	// Create name list for formatter
	names := make([]string, len(options))
	for i, opt := range options {
		names[i] = opt.Name
	}

	formatter := func(value float64) string {
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		// Fallback to index-based lookup for integer values
		index := int(value)
		if index >= 0 && index < len(names) {
			return names[index]
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)

		// Check each option and its aliases
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return opt.Value, nil
				}
			}
		}

		return 0, fmt.Errorf("unknown option: %s", str)
	}

	// Determine range and steps
	minVal, maxVal := 0.0, 0.0
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
	}
	steps := int32(len(options) - 1)
	if steps < 1 {
		steps = 1
	}

	b := New(id, name).
		Range(minVal, maxVal).
		Steps(steps).
		Default(minVal).
		Formatter(formatter, parser)
	b.param.Flags |= IsList
	return b
}

// Common parameter helpers

// GainParameter creates a level parameter from minDB to 0 dB
func GainParameter(id uint32, name string, minDB, defaultDB float64) *Builder {
	return New(id, name).
		Range(minDB, 0).
		Default(defaultDB).
		Unit("dB").
		Formatter(func(v float64) string {
			if v <= minDB {
				return "-∞ dB"
			}
			return fmt.Sprintf("%.1f dB", v)
		}, func(s string) (float64, error) {
			if strings.Contains(strings.ToLower(s), "inf") || strings.Contains(s, "∞") {
				return minDB, nil
			}
			return DecibelParser(s)
		})
}

// FrequencyParameter creates a frequency parameter with exponential scaling
func FrequencyParameter(id uint32, name string, min, max, defaultVal, factor float64) *Builder {
	return New(id, name).
		Range(min, max).
		Exponential(factor).
		Default(defaultVal).
		Unit("Hz").
		Formatter(FrequencyFormatter, FrequencyParser)
}

// TimeParameter creates a time parameter in seconds with exponential scaling
func TimeParameter(id uint32, name string, minSec, maxSec, defaultSec, factor float64) *Builder {
	return New(id, name).
		Range(minSec, maxSec).
		Exponential(factor).
		Default(defaultSec).
		Unit("s").
		Formatter(TimeFormatter, TimeParser)
}

// QParameter creates a Q/resonance parameter with exponential scaling
func QParameter(id uint32, name string, minQ, maxQ, defaultQ, factor float64) *Builder {
	return New(id, name).
		Range(minQ, maxQ).
		Exponential(factor).
		Default(defaultQ).
		Formatter(func(v float64) string {
			return fmt.Sprintf("Q: %.2f", v)
		}, func(s string) (float64, error) {
			s = strings.TrimPrefix(strings.TrimSpace(s), "Q:")
			return parseFloat(strings.TrimSpace(s))
		})
}

// DepthParameter creates a depth/amount parameter (0-100%)
func DepthParameter(id uint32, name string, defaultPercent float64) *Builder {
	return New(id, name).
		Range(0, 100).
		Default(defaultPercent).
		Unit("%").
		Formatter(PercentFormatter, PercentParser)
}

// Helper function to parse float with error handling
func parseFloat(s string) (float64, error) {
	var value float64
	_, err := fmt.Sscanf(s, "%f", &value)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", s)
	}
	return value, nil
}
