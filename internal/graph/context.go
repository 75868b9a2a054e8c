package graph

import (
	"errors"
	"fmt"
	"sync"
)

// RenderQuantum is the number of frames between control-rate updates.
const RenderQuantum = 128

// Source produces interleaved stereo float32 frames on demand.
type Source interface {
	Process(dst []float32)
}

// Output attaches a Source to a hardware sink. Start begins pulling frames,
// usually from a goroutine owned by the backend. Close releases the sink.
type Output interface {
	Start(src Source) error
	Close() error
}

// State is the lifecycle state of a Context.
type State int

const (
	Running State = iota
	Closed
)

func (s State) String() string {
	if s == Closed {
		return "closed"
	}
	return "running"
}

// Context owns a signal graph and its sample clock. All node, param and
// render operations are serialised by the context's mutex, so the control
// goroutine and the output backend can use it concurrently.
type Context struct {
	mu         sync.Mutex
	sampleRate float64
	frame      int64
	state      State
	out        Output
	nodes      []*node
	order      []*node // non-delay nodes, inputs before consumers
	delays     []*node
	dirty      bool
	dest       *Destination
}

// NewContext creates a running context. A nil out gives an offline context
// whose clock only advances through Process.
func NewContext(sampleRate int, out Output) (*Context, error) {
	if sampleRate <= 0 {
		return nil, errors.New("graph: sampleRate must be positive")
	}
	c := &Context{sampleRate: float64(sampleRate)}
	d := &Destination{}
	d.node = c.newNode("destination", d, true)
	c.dest = d
	if out != nil {
		c.out = out
		if err := out.Start(c); err != nil {
			c.out = nil
			c.state = Closed
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}
	return c, nil
}

func (c *Context) SampleRate() int { return int(c.sampleRate) }

// CurrentTime is the time in seconds of the next frame to be rendered.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / c.sampleRate
}

func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Destination is the final node; whatever reaches it is rendered.
func (c *Context) Destination() *Destination { return c.dest }

// Close stops any generator still running, marks the context closed and
// releases the output. A second Close returns ErrContextClosed.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		return ErrContextClosed
	}
	c.state = Closed
	for _, n := range c.nodes {
		if o, ok := n.proc.(*Oscillator); ok && o.started {
			o.stopped = true
		}
	}
	out := c.out
	c.out = nil
	c.mu.Unlock()

	if out != nil {
		if err := out.Close(); err != nil {
			return fmt.Errorf("graph: close output: %w", err)
		}
	}
	return nil
}

// Process renders len(dst)/2 stereo frames and advances the clock.
// A closed context renders silence and keeps its clock.
func (c *Context) Process(dst []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		clear(dst)
		return
	}
	if c.dirty {
		c.sort()
	}
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		t := c.now()
		for _, n := range c.delays {
			n.value = n.proc.(delayLine).emit()
		}
		for _, n := range c.order {
			n.value = n.proc.process(n.sum(), t)
		}
		for _, n := range c.delays {
			n.proc.(delayLine).feed(n.sum(), t)
		}
		v := float32(c.dest.value)
		dst[2*i] = v
		dst[2*i+1] = v
		c.frame++
	}
}

func (c *Context) newNode(kind string, proc processor, acceptsInput bool) *node {
	n := &node{ctx: c, kind: kind, proc: proc, acceptsInput: acceptsInput}
	if _, ok := proc.(delayLine); ok {
		n.delay = true
	}
	c.nodes = append(c.nodes, n)
	c.dirty = true
	return n
}

func (c *Context) checkOpen() error {
	if c.state == Closed {
		return ErrContextClosed
	}
	return nil
}

// sort orders non-delay nodes so every node comes after the nodes feeding it
// or its params. Delay outputs are emitted before the pass, so edges out of
// a delay do not constrain the order.
func (c *Context) sort() {
	c.order = c.order[:0]
	c.delays = c.delays[:0]
	indegree := make(map[*node]int, len(c.nodes))
	for _, n := range c.nodes {
		if n.delay {
			c.delays = append(c.delays, n)
			continue
		}
		indegree[n] = len(n.orderingDeps())
	}
	queue := make([]*node, 0, len(c.nodes))
	for _, n := range c.nodes {
		if !n.delay && indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		c.order = append(c.order, n)
		for _, m := range c.consumers(n) {
			indegree[m]--
			if indegree[m] == 0 {
				queue = append(queue, m)
			}
		}
	}
	c.dirty = false
}

// consumers returns the non-delay nodes that read n directly or through a param.
// A node appears once per edge so indegree counting stays consistent.
func (c *Context) consumers(n *node) []*node {
	if n.delay {
		return nil
	}
	var out []*node
	for _, m := range c.nodes {
		if m.delay {
			continue
		}
		for _, d := range m.orderingDeps() {
			if d == n {
				out = append(out, m)
			}
		}
	}
	return out
}

// reaches reports whether to is reachable from from along ordering edges.
func (c *Context) reaches(from, to *node) bool {
	if from == to {
		return true
	}
	seen := map[*node]bool{from: true}
	stack := []*node{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range c.consumers(n) {
			if m == to {
				return true
			}
			if !seen[m] {
				seen[m] = true
				stack = append(stack, m)
			}
		}
	}
	return false
}
