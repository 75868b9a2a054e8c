package graph

import "math"

// Delay outputs its input DelayTime seconds later. Because its output for a
// frame is known before its input, a Delay may sit inside a feedback loop.
type Delay struct {
	*node
	DelayTime *Param // seconds

	buf     []float64
	pos     int
	samples int
}

// NewDelay creates a delay line able to hold maxDelay seconds; maxDelay <= 0
// means one second. The initial delay time is zero, clamped to one frame.
func NewDelay(c *Context, maxDelay float64) (*Delay, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if maxDelay <= 0 {
		maxDelay = 1
	}
	size := int(math.Ceil(maxDelay*c.sampleRate)) + 1
	d := &Delay{buf: make([]float64, size), samples: 1}
	d.node = c.newNode("delay", d, true)
	d.DelayTime = d.newParam("delayTime", 0)
	return d, nil
}

// MaxDelay is the longest delay the buffer can hold, in seconds.
func (d *Delay) MaxDelay() float64 {
	return float64(len(d.buf)-1) / d.ctx.sampleRate
}

func (d *Delay) emit() float64 {
	i := d.pos - d.samples
	if i < 0 {
		i += len(d.buf)
	}
	return d.buf[i]
}

func (d *Delay) feed(in, t float64) {
	d.buf[d.pos] = in
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	n := int(math.Round(d.DelayTime.compute(t) * d.ctx.sampleRate))
	if n < 1 {
		n = 1
	}
	if n > len(d.buf)-1 {
		n = len(d.buf) - 1
	}
	d.samples = n
}

// process satisfies processor; the render loop calls emit and feed directly.
func (d *Delay) process(in, t float64) float64 {
	out := d.emit()
	d.feed(in, t)
	return out
}
