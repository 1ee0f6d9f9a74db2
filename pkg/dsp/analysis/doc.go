// Package analysis provides level and spectrum measurements of rendered
// voice output.
//
// Level Metering:
//   - Peak meter with hold
//   - RMS (Root Mean Square) meter over a sliding window
//   - Zero-crossing counter for pitch estimation of pulse waves
//
// Spectral Analysis:
//   - Dominant frequency of a Hann-windowed block
//
// Meters are safe to read from a goroutine other than the one feeding
// them.
//
// Example usage:
//
//	pm := analysis.NewPeakMeter(44100)
//	pm.Process(samples)
//	peakDB := pm.GetPeakDB()
//
//	s := analysis.Summarize(samples, 44100)
//	fmt.Println(s.Crossings, s.Frequency)
package analysis
