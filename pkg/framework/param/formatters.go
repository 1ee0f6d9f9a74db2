package param

import (
	"fmt"
	"strconv"
	"strings"
)

// Common parameter formatters and parsers

// FrequencyFormatter formats frequency values with Hz/kHz
func FrequencyFormatter(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f Hz", hz)
}

// FrequencyParser parses frequency strings
func FrequencyParser(str string) (float64, error) {
	str = strings.TrimSpace(str)

	// Handle kHz
	if strings.HasSuffix(str, "kHz") || strings.HasSuffix(str, "khz") {
		numStr := strings.TrimSuffix(strings.TrimSuffix(str, "kHz"), "khz")
		val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		if err != nil {
			return 0, err
		}
		return val * 1000, nil
	}

	// Handle Hz
	str = strings.TrimSuffix(strings.TrimSuffix(str, "Hz"), "hz")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// DecibelFormatter formats dB values
func DecibelFormatter(db float64) string {
	if db <= -60 {
		return "-∞ dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}

// DecibelParser parses dB strings
func DecibelParser(str string) (float64, error) {
	if strings.Contains(str, "∞") || strings.Contains(strings.ToLower(str), "inf") {
		return -60.0, nil // Practical minimum
	}
	str = strings.TrimSuffix(strings.TrimSpace(str), "dB")
	str = strings.TrimSuffix(strings.TrimSpace(str), "db")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// PercentFormatter formats percentage values
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

// PercentParser parses percentage strings
func PercentParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "%")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// FractionFormatter formats a 0-1 level as a percentage
func FractionFormatter(value float64) string {
	return PercentFormatter(value * 100)
}

// FractionParser parses a percentage into a 0-1 level
func FractionParser(str string) (float64, error) {
	v, err := PercentParser(str)
	return v / 100, err
}

// TimeFormatter formats seconds with appropriate units
func TimeFormatter(seconds float64) string {
	ms := seconds * 1000
	if ms < 1 {
		return fmt.Sprintf("%.2f µs", ms*1000)
	} else if ms < 1000 {
		return fmt.Sprintf("%.1f ms", ms)
	}
	return fmt.Sprintf("%.2f s", seconds)
}

// TimeParser parses time strings into seconds; bare numbers are seconds
func TimeParser(str string) (float64, error) {
	str = strings.TrimSpace(str)

	scale := 1.0
	switch {
	case strings.HasSuffix(str, "µs"):
		str, scale = strings.TrimSuffix(str, "µs"), 1e-6
	case strings.HasSuffix(str, "us"):
		str, scale = strings.TrimSuffix(str, "us"), 1e-6
	case strings.HasSuffix(str, "ms"):
		str, scale = strings.TrimSuffix(str, "ms"), 1e-3
	case strings.HasSuffix(str, "s"):
		str = strings.TrimSuffix(str, "s")
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, err
	}
	return val * scale, nil
}

// MillisecondsFormatter formats a value held in milliseconds
func MillisecondsFormatter(ms float64) string {
	return TimeFormatter(ms / 1000)
}

// MillisecondsParser parses time strings into milliseconds
func MillisecondsParser(str string) (float64, error) {
	str = strings.TrimSpace(str)
	if _, err := strconv.ParseFloat(str, 64); err == nil {
		str += "ms"
	}
	s, err := TimeParser(str)
	return s * 1000, err
}

// SemitoneFormatter formats a signed semitone offset
func SemitoneFormatter(st float64) string {
	return fmt.Sprintf("%+.2f st", st)
}

// SemitoneParser parses semitone strings
func SemitoneParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "st")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// CentsFormatter formats a signed cents offset
func CentsFormatter(ct float64) string {
	return fmt.Sprintf("%+.0f ct", ct)
}

// CentsParser parses cents strings
func CentsParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "ct")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// NoteFormatter formats MIDI note numbers
func NoteFormatter(noteNumber float64) string {
	notes := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	n := int(noteNumber)
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("%s%d", notes[n%12], n/12-1)
}

// NoteParser parses note names to MIDI numbers
func NoteParser(str string) (float64, error) {
	str = strings.ToUpper(strings.TrimSpace(str))

	noteMap := map[string]int{
		"C": 0, "B#": 0,
		"C#": 1, "DB": 1,
		"D": 2,
		"D#": 3, "EB": 3,
		"E": 4, "FB": 4,
		"F": 5, "E#": 5,
		"F#": 6, "GB": 6,
		"G": 7,
		"G#": 8, "AB": 8,
		"A": 9,
		"A#": 10, "BB": 10,
		"B": 11, "CB": 11,
	}

	// Find where the octave number starts
	octaveStart := -1
	for i, ch := range str {
		if ch >= '0' && ch <= '9' || ch == '-' {
			octaveStart = i
			break
		}
	}

	if octaveStart <= 0 {
		return 0, fmt.Errorf("no octave number found in note: %s", str)
	}

	noteName := str[:octaveStart]
	octaveStr := str[octaveStart:]

	noteOffset, ok := noteMap[noteName]
	if !ok {
		return 0, fmt.Errorf("unknown note name: %s", noteName)
	}

	octave, err := strconv.Atoi(octaveStr)
	if err != nil {
		return 0, fmt.Errorf("invalid octave number: %s", octaveStr)
	}

	return float64((octave+1)*12 + noteOffset), nil
}
