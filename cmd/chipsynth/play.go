package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/term"

	"github.com/justyntemme/chipsynth/pkg/dsp/analysis"
	"github.com/justyntemme/chipsynth/pkg/framework/debug"
	"github.com/justyntemme/chipsynth/pkg/framework/plugin"
	"github.com/justyntemme/chipsynth/pkg/framework/process"
	"github.com/justyntemme/chipsynth/pkg/midi"
)

// keyboard maps one octave onto the home row, piano style.
const keyboard = "awsedftgyhujk"

const baseNote = 60

// Level meter ballistics for the status line
const (
	meterHold   = 2.0  // seconds
	meterDecay  = 30.0 // dB per second
	meterWindow = 0.3  // seconds of RMS history
)

// player feeds oto from the processor. Read runs on oto's goroutine,
// which is the processor's audio thread. The meters are read from the
// key loop.
type player struct {
	proc *plugin.Processor
	ctx  *process.Context
	buf  []float32

	peak *analysis.PeakMeter
	rms  *analysis.RMSMeter
}

func newPlayer(proc *plugin.Processor, sampleRate float64) *player {
	peak := analysis.NewPeakMeter(sampleRate)
	peak.SetHoldTime(meterHold)
	peak.SetDecayRate(meterDecay)
	return &player{
		proc: proc,
		ctx:  process.NewContext(blockSize, sampleRate),
		buf:  make([]float32, blockSize),
		peak: peak,
		rms:  analysis.NewRMSMeter(int(meterWindow * sampleRate)),
	}
}

// levels formats the meters as a status line.
func (p *player) levels() string {
	return fmt.Sprintf("peak %.1f dBFS (hold %.1f), rms %.1f dBFS, %d voices",
		p.peak.GetPeakDB(), analysis.LinearToDB(p.peak.GetHold()),
		p.rms.GetRMSDB(), p.proc.ActiveVoices())
}

func (p *player) resetMeters() {
	p.peak.Reset()
	p.rms.Reset()
}

// Read renders float32 little-endian mono samples.
func (p *player) Read(b []byte) (int, error) {
	frames := len(b) / 4
	off := 0
	for frames > 0 {
		p.ctx.Resize(frames)
		p.proc.ProcessContext(p.ctx)
		p.peak.Process(p.ctx.Output)
		p.rms.Process(p.ctx.Output)
		n := p.ctx.Float32(p.buf)
		for _, s := range p.buf[:n] {
			binary.LittleEndian.PutUint32(b[off:], math.Float32bits(s))
			off += 4
		}
		frames -= n
	}
	return off, nil
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	opts := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	proc, patch, err := opts.load()
	defer opts.close()
	if err != nil {
		return err
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   patch.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}
	<-ready

	src := newPlayer(proc, float64(patch.SampleRate))
	out := otoCtx.NewPlayer(src)
	defer out.Close()
	out.Play()

	done := make(chan struct{})
	defer close(done)

	patches := make(chan *Patch, 1)
	watchErrs := make(chan error, 1)
	if patch.WatchConfig {
		if err := Watch(opts.config, patches, watchErrs, done); err != nil {
			debug.Warn("not watching %s: %v", opts.config, err)
		}
	}

	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting raw terminal mode: %w", err)
	}
	defer term.Restore(fd, state)

	// raw mode needs explicit carriage returns on the terminal
	if opts.logFile == "" {
		debug.SetOutput(crlfWriter{os.Stderr})
		defer debug.SetOutput(os.Stderr)
	}

	keys := make(chan byte)
	go readKeys(keys, done)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	fmt.Print("keys " + keyboard + " play, z/x octave, space releases, m meters, r resets, q quits\r\n")

	octave := 0
	var (
		heldNote uint8
		held     bool
	)
	release := func() {
		if held {
			proc.HandleMIDI(midi.NoteOffEvent{NoteNumber: heldNote})
			held = false
		}
	}

	for {
		select {
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			switch {
			case k == 'q' || k == 3: // ctrl-c arrives as a byte in raw mode
				release()
				return nil
			case k == ' ':
				release()
			case k == 'm':
				fmt.Print(src.levels() + "\r\n")
			case k == 'r':
				held = false
				proc.Reset()
				src.resetMeters()
			case k == 'z' && octave > -4:
				octave--
				fmt.Printf("octave %+d\r\n", octave)
			case k == 'x' && octave < 4:
				octave++
				fmt.Printf("octave %+d\r\n", octave)
			default:
				i := strings.IndexByte(keyboard, k)
				if i < 0 {
					continue
				}
				note := baseNote + octave*12 + i
				if note < 0 || note > 127 {
					continue
				}
				// terminals report no key release, so each press replaces
				// the previous note
				release()
				proc.HandleMIDI(midi.NoteOnEvent{NoteNumber: uint8(note), Velocity: 100})
				heldNote, held = uint8(note), true
				fmt.Printf("%s\r\n", midi.NoteNumberToName(uint8(note)))
			}
		case p := <-patches:
			if err := p.Apply(proc); err != nil {
				debug.Warn("reloading patch: %v", err)
				continue
			}
			debug.Info("patch reloaded")
		case err := <-watchErrs:
			debug.Warn("watching patch: %v", err)
		case <-signals:
			release()
			return nil
		}
	}
}

func readKeys(keys chan<- byte, done <-chan struct{}) {
	defer close(keys)
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		select {
		case keys <- buf[0]:
		case <-done:
			return
		}
	}
}

type crlfWriter struct {
	w *os.File
}

func (c crlfWriter) Write(b []byte) (int, error) {
	_, err := c.w.Write([]byte(strings.ReplaceAll(string(b), "\n", "\r\n")))
	return len(b), err
}
