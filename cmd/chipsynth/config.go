package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/justyntemme/chipsynth/pkg/dsp/nibble"
	"github.com/justyntemme/chipsynth/pkg/dsp/oscillator"
	"github.com/justyntemme/chipsynth/pkg/framework/param"
	"github.com/justyntemme/chipsynth/pkg/framework/plugin"
	"github.com/justyntemme/chipsynth/pkg/synth"
)

const defaultSampleRate = 44100

// ParamValue is a parameter setting in a patch file: either a plain
// number in the parameter's unit or a display string such as "12 kHz",
// "Triangle" or "50%".
type ParamValue struct {
	Plain *float64
	Text  string
}

func (v ParamValue) MarshalJSON() ([]byte, error) {
	if v.Plain != nil {
		return json.Marshal(*v.Plain)
	}
	return json.Marshal(v.Text)
}

func (v *ParamValue) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		v.Plain, v.Text = &f, ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parameter value must be a number or a string: %s", data)
	}
	v.Plain, v.Text = nil, s
	return nil
}

// Patch is the JSON patch file.
type Patch struct {
	SampleRate  int                   `json:"sampleRate"`
	Voices      int                   `json:"voices"`
	Seed        int64                 `json:"seed,omitempty"`
	LogLevel    string                `json:"logLevel,omitempty"`
	WatchConfig bool                  `json:"watchConfig"`
	Params      map[string]ParamValue `json:"params"`
	Wavetable   []int                 `json:"wavetable,omitempty"`
}

// DefaultPatch returns a patch holding every parameter's default. List
// parameters are written by name, the rest as plain numbers.
func DefaultPatch() *Patch {
	p := &Patch{
		SampleRate:  defaultSampleRate,
		Voices:      plugin.DefaultVoices,
		WatchConfig: true,
		Params:      make(map[string]ParamValue),
	}
	for _, prm := range synth.NewRegistry().All() {
		if prm.Flags&param.IsList != 0 {
			p.Params[prm.Name] = ParamValue{Text: prm.FormatValue(prm.DefaultValue)}
			continue
		}
		plain := prm.DefaultPlainValue()
		p.Params[prm.Name] = ParamValue{Plain: &plain}
	}
	return p
}

// ReadPatch loads a patch, writing the default patch first if the file
// does not exist. Settings missing from the file keep their defaults.
func ReadPatch(path string) (*Patch, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WritePatch(path, DefaultPatch()); err != nil {
			return nil, fmt.Errorf("can't write default patch: %w", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read patch: %w", err)
	}
	p := DefaultPatch()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("unmarshalling %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WritePatch writes p as indented JSON.
func WritePatch(path string, p *Patch) error {
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Validate checks the settings that cannot be clamped.
func (p *Patch) Validate() error {
	if p.SampleRate < 8000 || p.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d outside 8000-192000", p.SampleRate)
	}
	if p.Voices < 1 || p.Voices > plugin.MaxVoices {
		return fmt.Errorf("voices %d outside 1-%d", p.Voices, plugin.MaxVoices)
	}
	if n := len(p.Wavetable); n != 0 && n != len(oscillator.Table{}) {
		return fmt.Errorf("wavetable has %d entries, want %d", n, len(oscillator.Table{}))
	}
	return nil
}

// Apply pushes the patch into a processor. Every setting is attempted;
// the returned error joins all failures.
func (p *Patch) Apply(proc *plugin.Processor) error {
	var errs []error

	proc.SetVoiceCount(p.Voices)

	names := make([]string, 0, len(p.Params))
	for name := range p.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	registry := proc.Parameters()
	for _, name := range names {
		v := p.Params[name]
		prm := registry.Lookup(name)
		if prm == nil {
			errs = append(errs, fmt.Errorf("unknown parameter %q", name))
			continue
		}
		id := synth.ParamID(prm.ID)
		if v.Plain != nil {
			proc.SetParam(id, *v.Plain)
			continue
		}
		n, err := prm.ParseValue(v.Text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		proc.SetNormalized(id, n)
	}

	if len(p.Wavetable) == len(oscillator.Table{}) {
		var t oscillator.Table
		for i, level := range p.Wavetable {
			t[i] = nibble.Clamp(level)
		}
		proc.SetWavetable(t)
	}

	return errors.Join(errs...)
}
