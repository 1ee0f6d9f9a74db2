package synth

import (
	"fmt"

	"github.com/justyntemme/chipsynth/pkg/framework/param"
)

// ParamID identifies a voice parameter.
type ParamID uint32

// Parameter IDs
const (
	ParamMasterVolume ParamID = iota
	ParamPitchBend
	ParamDetune
	ParamOscillatorType
	ParamSweepType
	ParamSweepAmount
	ParamSweepPeriod
	ParamStutterTime
	ParamStutterDepth
	ParamStutterWhen
	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease
	ParamSquareDuty
	ParamNoiseInterval
	ParamDacFreq
	ParamDacQ

	ParamCount
)

// String returns the parameter name.
func (id ParamID) String() string {
	if id < ParamCount {
		return paramNames[id]
	}
	return fmt.Sprintf("ParamID(%d)", uint32(id))
}

var paramNames = [ParamCount]string{
	ParamMasterVolume:   "Master Volume",
	ParamPitchBend:      "Pitch Bend",
	ParamDetune:         "Detune",
	ParamOscillatorType: "Oscillator",
	ParamSweepType:      "Sweep",
	ParamSweepAmount:    "Sweep Amount",
	ParamSweepPeriod:    "Sweep Period",
	ParamStutterTime:    "Stutter Time",
	ParamStutterDepth:   "Stutter Depth",
	ParamStutterWhen:    "Stutter Trigger",
	ParamAttack:         "Attack",
	ParamDecay:          "Decay",
	ParamSustain:        "Sustain",
	ParamRelease:        "Release",
	ParamSquareDuty:     "Duty",
	ParamNoiseInterval:  "Noise Interval",
	ParamDacFreq:        "DAC Frequency",
	ParamDacQ:           "DAC Q",
}

// Curve shaping factors for the exponential parameters
const (
	timeFactor      = 5.0
	stutterFactor   = 4.6 // ln(100), one decade per half turn
	intervalFactor  = 5.0
	dacFreqFactor   = 6.9 // ln(1000)
	dacQFactor      = 4.6 // ln(100)
	maxEnvelopeTime = 5.0
)

// NewRegistry builds the parameter definitions in ID order.
func NewRegistry() *param.Registry {
	id := func(p ParamID) (uint32, string) {
		return uint32(p), p.String()
	}

	r := param.NewRegistry()
	mustAdd(r,
		param.GainParameter(uint32(ParamMasterVolume), ParamMasterVolume.String(), -60, -6).
			ShortName("Volume").Build(),

		param.New(id(ParamPitchBend)).
			ShortName("Bend").
			Range(-12, 12).
			Default(0).
			Unit("st").
			Formatter(param.SemitoneFormatter, param.SemitoneParser).
			Build(),

		param.New(id(ParamDetune)).
			Range(-100, 100).
			Default(0).
			Unit("ct").
			Formatter(param.CentsFormatter, param.CentsParser).
			Build(),

		param.Choice(uint32(ParamOscillatorType), ParamOscillatorType.String(), []param.ChoiceOption{
			{Value: 0, Name: "Square", Aliases: []string{"pulse"}},
			{Value: 1, Name: "Noise"},
			{Value: 2, Name: "Wavetable", Aliases: []string{"wave"}},
		}).ShortName("Osc").Build(),

		param.Choice(uint32(ParamSweepType), ParamSweepType.String(), []param.ChoiceOption{
			{Value: 0, Name: "None", Aliases: []string{"off"}},
			{Value: 1, Name: "Up"},
			{Value: 2, Name: "Down"},
			{Value: 3, Name: "Triangle", Aliases: []string{"tri"}},
		}).Build(),

		param.New(id(ParamSweepAmount)).
			Range(0, 8).
			Steps(8).
			Default(0).
			Build(),

		param.New(id(ParamSweepPeriod)).
			Range(0, 8).
			Steps(8).
			Default(0).
			Unit("tick").
			Build(),

		param.TimeParameter(uint32(ParamStutterTime), ParamStutterTime.String(), 0.01, 1, 0.1, stutterFactor).Build(),

		param.DepthParameter(uint32(ParamStutterDepth), ParamStutterDepth.String(), 0).Build(),

		param.Choice(uint32(ParamStutterWhen), ParamStutterWhen.String(), []param.ChoiceOption{
			{Value: 0, Name: "NoteOn", Aliases: []string{"note on", "on"}},
			{Value: 1, Name: "NoteOff", Aliases: []string{"note off", "off"}},
		}).Build(),

		param.TimeParameter(uint32(ParamAttack), ParamAttack.String(), 0, maxEnvelopeTime, 0.01, timeFactor).Build(),
		param.TimeParameter(uint32(ParamDecay), ParamDecay.String(), 0, maxEnvelopeTime, 0.1, timeFactor).Build(),

		param.New(id(ParamSustain)).
			Range(0, 1).
			Default(0.7).
			Unit("%").
			Formatter(param.FractionFormatter, param.FractionParser).
			Build(),

		param.TimeParameter(uint32(ParamRelease), ParamRelease.String(), 0, maxEnvelopeTime, 0.2, timeFactor).Build(),

		param.Choice(uint32(ParamSquareDuty), ParamSquareDuty.String(), []param.ChoiceOption{
			{Value: 0, Name: "12.5%", Aliases: []string{"12.5"}},
			{Value: 1, Name: "25%", Aliases: []string{"25"}},
			{Value: 2, Name: "50%", Aliases: []string{"50"}},
			{Value: 3, Name: "75%", Aliases: []string{"75"}},
		}).Default(2).Build(),

		param.New(id(ParamNoiseInterval)).
			ShortName("Interval").
			Range(0, 50).
			Exponential(intervalFactor).
			Default(1).
			Unit("ms").
			Formatter(param.MillisecondsFormatter, param.MillisecondsParser).
			Build(),

		param.FrequencyParameter(uint32(ParamDacFreq), ParamDacFreq.String(), 20, 20000, 12000, dacFreqFactor).Build(),

		param.QParameter(uint32(ParamDacQ), ParamDacQ.String(), 0.1, 10, 0.707, dacQFactor).Build(),
	)
	return r
}

// mustAdd registers the fixed parameter table. A failure is a programming
// error in the table itself.
func mustAdd(r *param.Registry, params ...*param.Parameter) {
	if err := r.Add(params...); err != nil {
		panic(fmt.Sprintf("synth: building parameter registry: %v", err))
	}
}

// Defaults returns the default plain value of every parameter.
func Defaults() [ParamCount]float64 {
	var out [ParamCount]float64
	for _, p := range NewRegistry().All() {
		out[p.ID] = p.DefaultPlainValue()
	}
	return out
}
