// Command chipsynth renders and plays the chip synth voice.
//
//	chipsynth info   [-config patch.json]
//	chipsynth render [-config patch.json] [-o out.wav] [-note 69] [-hold 0.5] [-tail 0.5]
//	chipsynth play   [-config patch.json]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/justyntemme/chipsynth/pkg/framework/debug"
	"github.com/justyntemme/chipsynth/pkg/framework/plugin"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: chipsynth <info|render|play> [flags]")
	fmt.Fprintln(os.Stderr, "run 'chipsynth <command> -h' for command flags")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "info":
		err = runInfo(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "play":
		err = runPlay(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		debug.Error("%v", err)
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	config   string
	logLevel string
	logFile  string
	seed     int64

	log io.Closer // open log file, if any
}

func addCommonFlags(fs *flag.FlagSet) *options {
	o := &options{}
	fs.StringVar(&o.config, "config", "chipsynth.json", "patch file, created with defaults if missing")
	fs.StringVar(&o.logLevel, "log", "", "log level: debug, info, warn, error, off (overrides the patch)")
	fs.StringVar(&o.logFile, "logfile", "", "append log output to this file instead of stderr")
	fs.Int64Var(&o.seed, "seed", 0, "noise and random wavetable seed, 0 for the patch seed or a random one")
	return o
}

// load reads the patch, configures logging and builds a processor with
// the patch applied.
func (o *options) load() (*plugin.Processor, *Patch, error) {
	patch, err := ReadPatch(o.config)
	if err != nil {
		return nil, nil, err
	}

	levelName := patch.LogLevel
	if o.logLevel != "" {
		levelName = o.logLevel
	}
	level, err := debug.ParseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}
	debug.SetLevel(level)
	if o.logFile != "" {
		if o.log, err = debug.LogToFile(o.logFile); err != nil {
			return nil, nil, err
		}
	}

	seed := patch.Seed
	if o.seed != 0 {
		seed = o.seed
	}

	var proc *plugin.Processor
	if seed != 0 {
		proc = plugin.NewProcessorSeeded(plugin.DefaultInfo, seed)
	} else {
		proc = plugin.NewProcessor(plugin.DefaultInfo)
	}

	if err := patch.Apply(proc); err != nil {
		return nil, nil, fmt.Errorf("applying %s: %w", o.config, err)
	}
	debug.Debug("loaded %s: %d Hz, %d voices", o.config, patch.SampleRate, patch.Voices)
	return proc, patch, nil
}

// close restores stderr logging and closes the log file opened by load.
func (o *options) close() {
	if o.log == nil {
		return
	}
	debug.SetOutput(os.Stderr)
	o.log.Close()
	o.log = nil
}
