package graph

import (
	"math"

	"github.com/cbegin/ambientpad-go/internal/wave"
)

// Oscillator is a periodic generator. It is silent until Start and after Stop.
type Oscillator struct {
	*node
	Frequency *Param // Hz
	Detune    *Param // cents

	gen     *wave.Generator
	started bool
	stopped bool
}

// NewOscillator creates a stopped oscillator at 440 Hz.
func NewOscillator(c *Context, shape wave.Shape) (*Oscillator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	o := &Oscillator{gen: wave.New(shape)}
	o.node = c.newNode("oscillator", o, false)
	o.Frequency = o.newParam("frequency", 440)
	o.Detune = o.newParam("detune", 0)
	return o, nil
}

func (o *Oscillator) Shape() wave.Shape { return o.gen.Shape() }

// Start begins generating at the current frame. An oscillator starts once.
func (o *Oscillator) Start() error {
	c := o.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return err
	}
	if o.started {
		return ErrInvalidState
	}
	o.started = true
	return nil
}

// Stop silences the oscillator from the current frame on. Stopping a second
// time returns ErrNodeAlreadyStopped, stopping before Start ErrInvalidState.
func (o *Oscillator) Stop() error {
	c := o.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if !o.started {
		return ErrInvalidState
	}
	if o.stopped {
		return ErrNodeAlreadyStopped
	}
	o.stopped = true
	return nil
}

// Playing reports whether the oscillator has been started and not stopped.
func (o *Oscillator) Playing() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.started && !o.stopped
}

func (o *Oscillator) process(_, t float64) float64 {
	if !o.started || o.stopped {
		return 0
	}
	freq := o.Frequency.compute(t)
	if cents := o.Detune.compute(t); cents != 0 {
		freq *= math.Pow(2, cents/1200)
	}
	return o.gen.Sample(freq, o.ctx.sampleRate)
}
