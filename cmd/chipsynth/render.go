package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/justyntemme/chipsynth/pkg/dsp/analysis"
	"github.com/justyntemme/chipsynth/pkg/dsp/utility"
	"github.com/justyntemme/chipsynth/pkg/framework/debug"
	"github.com/justyntemme/chipsynth/pkg/framework/plugin"
	"github.com/justyntemme/chipsynth/pkg/framework/process"
	"github.com/justyntemme/chipsynth/pkg/midi"
)

const blockSize = 512

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	opts := addCommonFlags(fs)
	out := fs.String("o", "chipsynth.wav", "output WAV file")
	note := fs.Uint("note", 69, "MIDI note number")
	velocity := fs.Uint("velocity", 127, "MIDI velocity")
	hold := fs.Float64("hold", 0.5, "seconds the key is held")
	tail := fs.Float64("tail", 0.5, "seconds rendered after release")
	dcBlock := fs.Float64("dcblock", 0, "DC blocker cutoff in Hz applied to the WAV, 0 disables")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *note > 127 || *velocity > 127 {
		return fmt.Errorf("note and velocity must be 0-127")
	}
	if *hold < 0 || *tail < 0 {
		return fmt.Errorf("hold and tail must not be negative")
	}

	proc, patch, err := opts.load()
	defer opts.close()
	if err != nil {
		return err
	}

	sr := float64(patch.SampleRate)
	holdFrames := int(*hold * sr)
	samples := renderNote(proc, sr, uint8(*note), uint8(*velocity), holdFrames, int(*tail*sr))
	summary := analysis.Summarize(samples[:holdFrames], sr)

	if *dcBlock > 0 {
		utility.NewDCBlocker(*dcBlock, sr).ProcessBuffer(samples)
	}
	if err := writeWAV(*out, samples, patch.SampleRate); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	debug.Info("wrote %d samples to %s", len(samples), *out)

	printSummary(os.Stdout, summary)
	return nil
}

// renderNote plays note for holdFrames, releases it and renders
// tailFrames more.
func renderNote(proc *plugin.Processor, sampleRate float64, note, velocity uint8, holdFrames, tailFrames int) []float64 {
	ctx := process.NewContext(blockSize, sampleRate)
	out := make([]float64, 0, holdFrames+tailFrames)

	render := func(frames int) {
		for frames > 0 {
			ctx.Resize(frames)
			proc.ProcessContext(ctx)
			out = append(out, ctx.Output...)
			frames -= ctx.NumSamples()
		}
	}

	proc.HandleMIDI(midi.NoteOnEvent{NoteNumber: note, Velocity: velocity})
	render(holdFrames)
	proc.HandleMIDI(midi.NoteOffEvent{NoteNumber: note})
	render(tailFrames)
	return out
}

// writeWAV writes 16-bit mono PCM.
func writeWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, s analysis.Summary) {
	fmt.Fprintf(w, "peak %.1f dBFS, rms %.1f dBFS, %d zero crossings\n", s.PeakDB(), s.RMSDB(), s.Crossings)
	if s.Frequency > 0 {
		note := midi.FrequencyToNote(s.Frequency, 440)
		fmt.Fprintf(w, "fundamental %.1f Hz (%s)\n", s.Frequency, midi.NoteNumberToName(note))
	}
}
