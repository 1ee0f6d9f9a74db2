package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/justyntemme/chipsynth/pkg/dsp/register"
	"github.com/justyntemme/chipsynth/pkg/framework/plugin"
	"github.com/justyntemme/chipsynth/pkg/synth"
)

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	opts := addCommonFlags(fs)
	save := fs.String("save", "", "also write the patch as a binary state blob to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	proc, patch, err := opts.load()
	defer opts.close()
	if err != nil {
		return err
	}
	printInfo(os.Stdout, proc, patch)

	if *save != "" {
		if err := saveState(*save, proc); err != nil {
			return fmt.Errorf("saving state to %s: %w", *save, err)
		}
	}
	return nil
}

func saveState(path string, proc *plugin.Processor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := proc.SaveState(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printInfo(w io.Writer, proc *plugin.Processor, patch *Patch) {
	info := proc.Info()
	fmt.Fprintln(w, info)
	fmt.Fprintf(w, "UID %s\n", info.UIDString())
	fmt.Fprintf(w, "%d Hz, %d of %d voices\n\n", patch.SampleRate, patch.Voices, plugin.MaxVoices)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVALUE\tDEFAULT\tRANGE")
	for _, prm := range proc.Parameters().All() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%g..%g %s\n",
			prm.ID, prm.Name,
			prm.FormatValue(prm.GetValue()),
			prm.FormatValue(prm.DefaultValue),
			prm.Min, prm.Max, prm.Unit)
	}
	tw.Flush()

	nr10, nr11, err := registers(proc)
	switch {
	case errors.Is(err, register.ErrNotRepresentable):
		fmt.Fprintf(w, "\nregisters: not representable (%v)\n", err)
	case err != nil:
		fmt.Fprintf(w, "\nregisters: %v\n", err)
	default:
		fmt.Fprintf(w, "\nNR10 0x%02X  NR11 0x%02X\n", nr10, nr11)
	}
}

// registers encodes the processor's current settings on a scratch voice;
// the processor's own voices belong to the audio thread.
func registers(proc *plugin.Processor) (nr10, nr11 uint8, err error) {
	v := synth.NewVoice()
	for id := synth.ParamID(0); id < synth.ParamCount; id++ {
		v.SetParam(id, proc.Param(id))
	}
	return v.Registers()
}
