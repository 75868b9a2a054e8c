package graph

import (
	"math"
	"slices"
	"sort"
)

// EventKind identifies a scheduled automation event.
type EventKind int

const (
	SetValueEvent EventKind = iota
	LinearRampEvent
	ExponentialRampEvent
)

func (k EventKind) String() string {
	switch k {
	case LinearRampEvent:
		return "linear"
	case ExponentialRampEvent:
		return "exponential"
	}
	return "set"
}

// Event is one point on a param's automation timeline. For ramps, Time and
// Value are where the ramp ends.
type Event struct {
	Kind  EventKind
	Time  float64
	Value float64
}

type event struct {
	Event
	// start of a ramp scheduled with nothing before it on the timeline
	startTime  float64
	startValue float64
}

// Param is an automatable node parameter. Its computed value at a frame is
// the automation value plus the sum of any nodes connected to it.
type Param struct {
	owner  *node
	name   string
	value  float64
	events []event
	inputs []*node
}

func (p *Param) Name() string { return p.name }

func (p *Param) lock()   { p.owner.ctx.mu.Lock() }
func (p *Param) unlock() { p.owner.ctx.mu.Unlock() }

// Value returns the automation value at the context's current time.
func (p *Param) Value() float64 {
	p.lock()
	defer p.unlock()
	return p.valueAt(p.owner.ctx.now())
}

// SetValue sets the value used before the first scheduled event.
func (p *Param) SetValue(v float64) error {
	if !finite(v) {
		return ErrInvalidValue
	}
	p.lock()
	defer p.unlock()
	p.value = v
	return nil
}

// SetValueAtTime jumps to v at time t.
func (p *Param) SetValueAtTime(v, t float64) error {
	return p.schedule(SetValueEvent, v, t)
}

// LinearRampToValueAtTime ramps linearly from the previous event to v, reaching it at t.
func (p *Param) LinearRampToValueAtTime(v, t float64) error {
	return p.schedule(LinearRampEvent, v, t)
}

// ExponentialRampToValueAtTime ramps exponentially from the previous event to
// v, reaching it at t. v must be non-zero.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) error {
	if v == 0 {
		return ErrInvalidValue
	}
	return p.schedule(ExponentialRampEvent, v, t)
}

// CancelScheduledValues drops every event at or after t. A ramp that is in
// progress at t is replaced by a hold at the value it had reached, so the
// param never jumps back to an earlier value.
func (p *Param) CancelScheduledValues(t float64) error {
	if !finite(t) || t < 0 {
		return ErrInvalidValue
	}
	p.lock()
	defer p.unlock()

	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time >= t })
	if i == len(p.events) {
		return nil
	}
	var hold *event
	if e := p.events[i]; e.Kind != SetValueEvent {
		t0, _ := p.rampStart(i)
		if t0 < t {
			hold = &event{Event: Event{Kind: SetValueEvent, Time: t, Value: p.valueAt(t)}}
		}
	}
	p.events = p.events[:i]
	if hold != nil {
		p.events = append(p.events, *hold)
	}
	return nil
}

// Pending returns the events scheduled strictly after the current time.
func (p *Param) Pending() []Event {
	p.lock()
	defer p.unlock()
	now := p.owner.ctx.now()
	var out []Event
	for _, e := range p.events {
		if e.Time > now {
			out = append(out, e.Event)
		}
	}
	return out
}

// Events returns the whole timeline.
func (p *Param) Events() []Event {
	p.lock()
	defer p.unlock()
	out := make([]Event, len(p.events))
	for i, e := range p.events {
		out[i] = e.Event
	}
	return out
}

func (p *Param) schedule(kind EventKind, v, t float64) error {
	if !finite(v) || !finite(t) || t < 0 {
		return ErrInvalidValue
	}
	p.lock()
	defer p.unlock()

	e := event{Event: Event{Kind: kind, Time: t, Value: v}}
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > t })
	if i > 0 && p.events[i-1].Time == t && p.events[i-1].Kind == kind {
		p.events[i-1].Value = v
		return nil
	}
	if i == 0 && kind != SetValueEvent {
		now := p.owner.ctx.now()
		e.startTime = now
		e.startValue = p.valueAt(now)
	}
	p.events = slices.Insert(p.events, i, e)
	return nil
}

// compute is called from the render loop with the context locked.
func (p *Param) compute(t float64) float64 {
	v := p.valueAt(t)
	for _, in := range p.inputs {
		v += in.value
	}
	return v
}

func (p *Param) valueAt(t float64) float64 {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].Time > t })
	if i < len(p.events) && p.events[i].Kind != SetValueEvent {
		t0, v0 := p.rampStart(i)
		next := p.events[i]
		return interpolate(next.Kind, t0, v0, next.Time, next.Value, t)
	}
	if i > 0 {
		return p.events[i-1].Value
	}
	return p.value
}

func (p *Param) rampStart(i int) (float64, float64) {
	if i > 0 {
		prev := p.events[i-1]
		return prev.Time, prev.Value
	}
	return p.events[i].startTime, p.events[i].startValue
}

func interpolate(kind EventKind, t0, v0, t1, v1, t float64) float64 {
	if t <= t0 {
		return v0
	}
	if t >= t1 || t1 <= t0 {
		return v1
	}
	r := (t - t0) / (t1 - t0)
	if kind == LinearRampEvent {
		return v0 + (v1-v0)*r
	}
	// exponential ramps through or from zero hold the start value
	if v0 == 0 || v0*v1 < 0 {
		return v0
	}
	return v0 * math.Pow(v1/v0, r)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
