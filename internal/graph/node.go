package graph

import "slices"

type processor interface {
	process(in, t float64) float64
}

// delayLine is implemented by nodes whose output for a frame is known before
// their input is; they break feedback cycles.
type delayLine interface {
	processor
	emit() float64
	feed(in, t float64)
}

// Node is anything that can be wired into a Context's graph.
type Node interface {
	graphNode() *node
}

type node struct {
	ctx          *Context
	kind         string
	proc         processor
	inputs       []*node
	params       []*Param
	value        float64
	acceptsInput bool
	delay        bool
}

func (n *node) graphNode() *node { return n }

// Kind names the node type, e.g. "oscillator" or "gain".
func (n *node) Kind() string { return n.kind }

// Context returns the context that owns the node.
func (n *node) Context() *Context { return n.ctx }

// Connect routes this node's output into dst's input. Connecting twice is a no-op.
func (n *node) Connect(dst Node) error {
	d := dst.graphNode()
	c := n.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if d.ctx != c {
		return ErrForeignNode
	}
	if err := c.checkOpen(); err != nil {
		return err
	}
	if !d.acceptsInput {
		return ErrNoInput
	}
	if slices.Contains(d.inputs, n) {
		return nil
	}
	if !n.delay && !d.delay && c.reaches(d, n) {
		return ErrCycle
	}
	d.inputs = append(d.inputs, n)
	c.dirty = true
	return nil
}

// ConnectParam routes this node's output into p, where it is added to the
// param's automation value every frame.
func (n *node) ConnectParam(p *Param) error {
	c := n.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.owner.ctx != c {
		return ErrForeignNode
	}
	if err := c.checkOpen(); err != nil {
		return err
	}
	if slices.Contains(p.inputs, n) {
		return nil
	}
	if !n.delay && !p.owner.delay && c.reaches(p.owner, n) {
		return ErrCycle
	}
	p.inputs = append(p.inputs, n)
	c.dirty = true
	return nil
}

// Connected reports whether this node feeds dst's input.
func (n *node) Connected(dst Node) bool {
	d := dst.graphNode()
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return slices.Contains(d.inputs, n)
}

// ConnectedParam reports whether this node feeds p.
func (n *node) ConnectedParam(p *Param) bool {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return slices.Contains(p.inputs, n)
}

func (n *node) newParam(name string, value float64) *Param {
	p := &Param{owner: n, name: name, value: value}
	n.params = append(n.params, p)
	return p
}

func (n *node) sum() float64 {
	var s float64
	for _, in := range n.inputs {
		s += in.value
	}
	return s
}

// orderingDeps lists the non-delay producers this node must be evaluated after.
func (n *node) orderingDeps() []*node {
	var deps []*node
	for _, in := range n.inputs {
		if !in.delay {
			deps = append(deps, in)
		}
	}
	for _, p := range n.params {
		for _, in := range p.inputs {
			if !in.delay {
				deps = append(deps, in)
			}
		}
	}
	return deps
}

// Destination is the graph's sink.
type Destination struct {
	*node
}

func (d *Destination) process(in, _ float64) float64 { return in }

// Gain scales its input by the Gain param.
type Gain struct {
	*node
	Gain *Param
}

// NewGain creates a gain node with unity gain.
func NewGain(c *Context) (*Gain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	g := &Gain{}
	g.node = c.newNode("gain", g, true)
	g.Gain = g.newParam("gain", 1)
	return g, nil
}

func (g *Gain) process(in, t float64) float64 {
	return in * g.Gain.compute(t)
}
