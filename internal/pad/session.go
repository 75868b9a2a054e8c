// Package pad builds the ambient pad signal graph and drives its envelope
// and teardown.
package pad

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cbegin/ambientpad-go/internal/graph"
	"github.com/cbegin/ambientpad-go/internal/wave"
)

// ErrEngineUnavailable is returned by Build when no audio context can be acquired.
var ErrEngineUnavailable = errors.New("pad: audio engine unavailable")

// ContextFactory acquires a fresh audio context for one session.
type ContextFactory func() (*graph.Context, error)

var sessionSeq atomic.Uint64

// Session is one live pad graph. It owns its context and every node in it.
type Session struct {
	ID      uint64
	Params  Params
	Context *graph.Context

	Master   *graph.Gain
	OscA     *graph.Oscillator
	OscB     *graph.Oscillator
	LFO      *graph.Oscillator
	LFODepth *graph.Gain
	Filter   *graph.BiquadFilter
	Delay    *graph.Delay
	Feedback *graph.Gain

	released atomic.Bool
}

// AudioNodes lists the nodes on the audible path plus the LFO.
func (s *Session) AudioNodes() []graph.Node {
	return []graph.Node{s.OscA, s.OscB, s.LFO, s.Filter, s.Delay, s.Feedback, s.Master}
}

// Generators lists the periodic sources that must be stopped on teardown.
func (s *Session) Generators() []*graph.Oscillator {
	return []*graph.Oscillator{s.OscA, s.OscB, s.LFO}
}

// Released reports whether Teardown has run for the session.
func (s *Session) Released() bool { return s.released.Load() }

// Build acquires a context from newContext and wires the pad into it:
//
//	oscA, oscB -> lowpass -> master -> destination
//	              lowpass -> delay <-> feedback
//	                         delay -> master
//	lfo -> depth -> lowpass.frequency
//
// Generators are started and the master gain is 0, so the graph is silent
// until FadeIn. Params are validated before a context is acquired.
func Build(newContext ContextFactory, p Params) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ctx, err := newContext()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	s, err := wire(ctx, p)
	if err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("pad: build graph: %w", err)
	}
	return s, nil
}

type connector interface {
	Connect(graph.Node) error
	ConnectParam(*graph.Param) error
}

// wiring records the first error so node creation reads as a straight list.
type wiring struct {
	ctx *graph.Context
	err error
}

func (w *wiring) set(p *graph.Param, v float64) {
	if w.err == nil {
		w.err = p.SetValue(v)
	}
}

func (w *wiring) oscillator(shape wave.Shape, freq float64) *graph.Oscillator {
	if w.err != nil {
		return nil
	}
	o, err := graph.NewOscillator(w.ctx, shape)
	if err != nil {
		w.err = err
		return nil
	}
	w.set(o.Frequency, freq)
	return o
}

func (w *wiring) gain(v float64) *graph.Gain {
	if w.err != nil {
		return nil
	}
	g, err := graph.NewGain(w.ctx)
	if err != nil {
		w.err = err
		return nil
	}
	w.set(g.Gain, v)
	return g
}

func (w *wiring) lowpass(cutoff, q float64) *graph.BiquadFilter {
	if w.err != nil {
		return nil
	}
	f, err := graph.NewBiquadFilter(w.ctx)
	if err != nil {
		w.err = err
		return nil
	}
	w.set(f.Frequency, cutoff)
	w.set(f.Q, q)
	return f
}

func (w *wiring) delay(seconds float64) *graph.Delay {
	if w.err != nil {
		return nil
	}
	d, err := graph.NewDelay(w.ctx, math.Max(1, seconds))
	if err != nil {
		w.err = err
		return nil
	}
	w.set(d.DelayTime, seconds)
	return d
}

func (w *wiring) connect(src connector, dst graph.Node) {
	if w.err == nil {
		w.err = src.Connect(dst)
	}
}

func wire(ctx *graph.Context, p Params) (*Session, error) {
	w := &wiring{ctx: ctx}
	s := &Session{Params: p, Context: ctx}

	s.Master = w.gain(0)
	s.LFO = w.oscillator(wave.Sine, p.LFORate)
	s.LFODepth = w.gain(p.LFODepth)
	s.OscA = w.oscillator(wave.Triangle, p.BaseFreq)
	s.OscB = w.oscillator(wave.Triangle, p.BaseFreq*p.DetuneRatio)
	s.Filter = w.lowpass(p.FilterCutoff, p.FilterQ)
	s.Delay = w.delay(p.DelayTime)
	s.Feedback = w.gain(p.Feedback)
	if w.err != nil {
		return nil, w.err
	}

	w.connect(s.Master, ctx.Destination())
	w.connect(s.Delay, s.Feedback)
	w.connect(s.Feedback, s.Delay)
	w.connect(s.OscA, s.Filter)
	w.connect(s.OscB, s.Filter)
	w.connect(s.Filter, s.Master)
	w.connect(s.Filter, s.Delay)
	w.connect(s.Delay, s.Master)
	w.connect(s.LFO, s.LFODepth)
	if w.err == nil {
		w.err = s.LFODepth.ConnectParam(s.Filter.Frequency)
	}
	if w.err != nil {
		return nil, w.err
	}

	for _, o := range s.Generators() {
		if err := o.Start(); err != nil {
			return nil, err
		}
	}
	s.ID = sessionSeq.Add(1)
	return s, nil
}
