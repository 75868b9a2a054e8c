package wave

import "math"

// Shape selects the periodic waveform produced by a Generator.
type Shape int

const (
	Sine Shape = iota
	Triangle
)

func (s Shape) String() string {
	switch s {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	}
	return "unknown"
}

// Generator is a phase accumulator producing one periodic waveform.
// The frequency is supplied per sample so it can be modulated by the caller.
type Generator struct {
	shape Shape
	phase float64 // current phase [0, 1)
}

// New returns a generator for shape starting at phase 0.
func New(shape Shape) *Generator {
	if shape < Sine || shape > Triangle {
		shape = Sine
	}
	return &Generator{shape: shape}
}

func (g *Generator) Shape() Shape { return g.shape }

// Sample returns the waveform value at the current phase in [-1, 1] and
// advances the phase by freqHz/sampleRate. Returns 0 for a zero sample rate.
func (g *Generator) Sample(freqHz, sampleRate float64) float64 {
	if sampleRate == 0 {
		return 0
	}

	var v float64
	switch g.shape {
	case Triangle:
		if g.phase < 0.5 {
			v = 4.0*g.phase - 1.0
		} else {
			v = 3.0 - 4.0*g.phase
		}
	default:
		v = math.Sin(2 * math.Pi * g.phase)
	}

	g.phase += freqHz / sampleRate
	g.phase -= math.Floor(g.phase)
	return v
}

// Reset zeros the phase.
func (g *Generator) Reset() {
	g.phase = 0
}
