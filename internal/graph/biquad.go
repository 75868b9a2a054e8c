package graph

import "math"

// BiquadFilter is a second-order IIR lowpass. Frequency and Q are read once per
// render quantum, so modulation of the cutoff is applied at control rate.
type BiquadFilter struct {
	*node
	Frequency *Param // cutoff, Hz
	Q         *Param

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
	frames             int
}

// NewBiquadFilter creates a lowpass with a 350 Hz cutoff and Q of 1.
func NewBiquadFilter(c *Context) (*BiquadFilter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	f := &BiquadFilter{}
	f.node = c.newNode("biquad", f, true)
	f.Frequency = f.newParam("frequency", 350)
	f.Q = f.newParam("q", 1)
	return f, nil
}

func (f *BiquadFilter) process(in, t float64) float64 {
	if f.frames%RenderQuantum == 0 {
		f.setCoefficients(f.Frequency.compute(t), f.Q.compute(t))
	}
	f.frames++
	out := f.b0*in + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, in
	f.y2, f.y1 = f.y1, out
	return out
}

// setCoefficients follows RBJ's audio EQ cookbook.
func (f *BiquadFilter) setCoefficients(freq, q float64) {
	sr := f.ctx.sampleRate
	freq = math.Max(10, math.Min(freq, sr*0.49))
	q = math.Max(q, 0.0001)
	w0 := 2 * math.Pi * freq / sr
	alpha := math.Sin(w0) / (2 * q)
	cos := math.Cos(w0)

	b0 := (1 - cos) / 2
	b1 := 1 - cos
	b2 := (1 - cos) / 2
	a0 := 1 + alpha
	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = -2*cos/a0, (1-alpha)/a0
}
