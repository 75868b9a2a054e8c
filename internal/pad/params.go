package pad

import (
	"errors"
	"fmt"
	"math"
)

// MaxDelayTime bounds Params.DelayTime.
const MaxDelayTime = 5.0

var (
	ErrInvalidParams    = errors.New("pad: invalid params")
	ErrUnstableFeedback = errors.New("pad: feedback magnitude must be below 1")
)

// Params describes the pad texture. Every field has a default.
type Params struct {
	BaseFreq     float64 // Hz, oscillator A
	DetuneRatio  float64 // oscillator B runs at BaseFreq*DetuneRatio
	FilterCutoff float64 // Hz
	FilterQ      float64
	LFORate      float64 // Hz
	LFODepth     float64 // LFO gain added to the cutoff, Hz
	DelayTime    float64 // seconds
	Feedback     float64 // delay loop coefficient
}

func DefaultParams() Params {
	return Params{
		BaseFreq:     110,
		DetuneRatio:  1.012,
		FilterCutoff: 700,
		FilterQ:      1,
		LFORate:      0.05,
		LFODepth:     0.15,
		DelayTime:    0.6,
		Feedback:     0.35,
	}
}

// Validate rejects params that cannot build a stable graph. A feedback
// coefficient of magnitude 1 or more fails with ErrUnstableFeedback.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"base_freq", p.BaseFreq},
		{"detune_ratio", p.DetuneRatio},
		{"filter_cutoff", p.FilterCutoff},
		{"filter_q", p.FilterQ},
		{"lfo_rate", p.LFORate},
		{"lfo_depth", p.LFODepth},
		{"delay_time", p.DelayTime},
		{"feedback", p.Feedback},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, f.name)
		}
	}
	switch {
	case p.BaseFreq <= 0:
		return fmt.Errorf("%w: base_freq must be positive", ErrInvalidParams)
	case p.DetuneRatio <= 0:
		return fmt.Errorf("%w: detune_ratio must be positive", ErrInvalidParams)
	case p.FilterCutoff <= 0:
		return fmt.Errorf("%w: filter_cutoff must be positive", ErrInvalidParams)
	case p.FilterQ <= 0:
		return fmt.Errorf("%w: filter_q must be positive", ErrInvalidParams)
	case p.LFORate < 0:
		return fmt.Errorf("%w: lfo_rate must not be negative", ErrInvalidParams)
	case p.LFODepth < 0:
		return fmt.Errorf("%w: lfo_depth must not be negative", ErrInvalidParams)
	case p.DelayTime <= 0 || p.DelayTime > MaxDelayTime:
		return fmt.Errorf("%w: delay_time must be in (0, %g]", ErrInvalidParams, MaxDelayTime)
	case math.Abs(p.Feedback) >= 1:
		return fmt.Errorf("%w: got %g", ErrUnstableFeedback, p.Feedback)
	}
	return nil
}
