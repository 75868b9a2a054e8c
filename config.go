package ambientpad

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigEnv names the environment variable consulted when no config path is given.
const ConfigEnv = "AMBIENTPAD_CONFIG"

type presetFile struct {
	BaseFreq     float64 `toml:"base_freq"`
	DetuneRatio  float64 `toml:"detune_ratio"`
	FilterCutoff float64 `toml:"filter_cutoff"`
	FilterQ      float64 `toml:"filter_q"`
	LFORate      float64 `toml:"lfo_rate"`
	LFODepth     float64 `toml:"lfo_depth"`
	DelayTime    float64 `toml:"delay_time"`
	Feedback     float64 `toml:"feedback"`
}

func presetFrom(p Params) presetFile {
	return presetFile{
		BaseFreq:     p.BaseFreq,
		DetuneRatio:  p.DetuneRatio,
		FilterCutoff: p.FilterCutoff,
		FilterQ:      p.FilterQ,
		LFORate:      p.LFORate,
		LFODepth:     p.LFODepth,
		DelayTime:    p.DelayTime,
		Feedback:     p.Feedback,
	}
}

func (f presetFile) params() Params {
	return Params{
		BaseFreq:     f.BaseFreq,
		DetuneRatio:  f.DetuneRatio,
		FilterCutoff: f.FilterCutoff,
		FilterQ:      f.FilterQ,
		LFORate:      f.LFORate,
		LFODepth:     f.LFODepth,
		DelayTime:    f.DelayTime,
		Feedback:     f.Feedback,
	}
}

// ParseConfig reads a TOML preset. Keys left out keep their defaults;
// unknown keys are an error. The result is validated.
//
//	base_freq = 98
//	feedback = 0.4
func ParseConfig(data string) (Params, error) {
	f := presetFrom(DefaultParams())
	md, err := toml.Decode(data, &f)
	if err != nil {
		return Params{}, fmt.Errorf("ambientpad: parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Params{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidParams, strings.Join(keys, ", "))
	}
	p := f.params()
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// LoadConfig reads a preset file. An empty path falls back to $AMBIENTPAD_CONFIG,
// and to the defaults when that is unset too.
func LoadConfig(path string) (Params, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		return DefaultParams(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("ambientpad: read config: %w", err)
	}
	return ParseConfig(string(data))
}

// WriteConfig writes p as a TOML preset.
func WriteConfig(path string, p Params) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(presetFrom(p)); err != nil {
		f.Close()
		return fmt.Errorf("ambientpad: write config: %w", err)
	}
	return f.Close()
}
