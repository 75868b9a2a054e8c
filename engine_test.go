package ambientpad

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	intaudio "github.com/cbegin/ambientpad-go/internal/audio"
	"github.com/cbegin/ambientpad-go/internal/graph"
	"github.com/cbegin/ambientpad-go/internal/pad"
)

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler fires timers only from Advance, on the caller's goroutine.
type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.now += d
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			t.f()
		}
	}
}

type countingOutput struct {
	closes int
}

func (o *countingOutput) Start(graph.Source) error { return nil }

func (o *countingOutput) Close() error {
	o.closes++
	return nil
}

// devices hands out offline contexts and remembers them.
type devices struct {
	fail     error
	contexts []*graph.Context
	outputs  []*countingOutput
}

func (d *devices) newContext() (*graph.Context, error) {
	if d.fail != nil {
		return nil, d.fail
	}
	out := &countingOutput{}
	c, err := graph.NewContext(8000, out)
	if err != nil {
		return nil, err
	}
	d.contexts = append(d.contexts, c)
	d.outputs = append(d.outputs, out)
	return c, nil
}

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *fakeScheduler, *devices) {
	t.Helper()
	sched := &fakeScheduler{}
	devs := &devices{}
	opts = append([]EngineOption{WithScheduler(sched), withContextFactory(devs.newContext)}, opts...)
	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, sched, devs
}

func mustToggle(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Toggle(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
}

func TestToggleParity(t *testing.T) {
	e, _, devs := newTestEngine(t)
	if e.IsPlaying() || e.State() != Idle {
		t.Fatal("new engine should be idle")
	}
	for n := 1; n <= 7; n++ {
		mustToggle(t, e)
		if got, want := e.IsPlaying(), n%2 == 1; got != want {
			t.Fatalf("after %d toggles IsPlaying = %v, want %v", n, got, want)
		}
	}
	if len(devs.contexts) != 4 {
		t.Fatalf("contexts = %d, want one per start (4)", len(devs.contexts))
	}
	e.Dispose()
	for i, c := range devs.contexts {
		if c.State() != graph.Closed {
			t.Errorf("context %d not closed after dispose", i)
		}
	}
}

func TestToggleStartsFadeIn(t *testing.T) {
	e, _, _ := newTestEngine(t)
	mustToggle(t, e)
	s := e.current
	if s == nil {
		t.Fatal("no current session")
	}
	if got := s.Master.Gain.Value(); got != pad.Floor {
		t.Fatalf("gain right after start = %v, want %v", got, pad.Floor)
	}
	if s.Feedback.Gain.Value() >= 1 {
		t.Fatal("feedback must stay below 1")
	}
}

func TestToggleScenario(t *testing.T) {
	e, sched, devs := newTestEngine(t)

	mustToggle(t, e)
	if e.State() != Playing {
		t.Fatalf("state = %v, want playing", e.State())
	}
	s := e.current
	if n := len(s.AudioNodes()); n != 7 {
		t.Fatalf("session nodes = %d, want 7", n)
	}
	for i, o := range s.Generators() {
		if !o.Playing() {
			t.Fatalf("generator %d not started", i)
		}
	}

	s.Context.Process(make([]float32, 2*400)) // 50 ms
	sched.Advance(50 * time.Millisecond)
	mustToggle(t, e)

	if e.IsPlaying() {
		t.Fatal("IsPlaying should be false right after stopping")
	}
	if e.State() != Draining {
		t.Fatalf("state = %v, want draining", e.State())
	}
	if e.current != nil {
		t.Fatal("draining session must not stay current")
	}
	pending := s.Master.Gain.Pending()
	if len(pending) != 1 || pending[0].Kind != graph.LinearRampEvent || pending[0].Value != pad.Floor {
		t.Fatalf("pending = %+v, want one linear ramp to the floor", pending)
	}
	if got, want := pending[0].Time, s.Context.CurrentTime()+1.5; got != want {
		t.Fatalf("ramp ends at %v, want %v", got, want)
	}
	if len(sched.timers) != 1 || sched.timers[0].at != 50*time.Millisecond+1700*time.Millisecond {
		t.Fatalf("timers = %+v, want one teardown at 1.75s", sched.timers)
	}

	sched.Advance(1600 * time.Millisecond)
	if s.Context.State() != graph.Running || !s.OscA.Playing() {
		t.Fatal("session released before its deadline")
	}

	sched.Advance(100*time.Millisecond + time.Millisecond)
	for i, o := range s.Generators() {
		if o.Playing() {
			t.Errorf("generator %d still playing after deadline", i)
		}
	}
	if s.Context.State() != graph.Closed {
		t.Fatal("context still running after deadline")
	}
	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}

	sched.Advance(5 * time.Second)
	e.Dispose()
	if got := devs.outputs[0].closes; got != 1 {
		t.Fatalf("context released %d times, want exactly 1", got)
	}
}

func TestDisposeWhilePlaying(t *testing.T) {
	e, sched, devs := newTestEngine(t)
	mustToggle(t, e)
	s := e.current

	e.Dispose()
	if e.current != nil {
		t.Fatal("session reference not cleared")
	}
	if e.IsPlaying() || e.State() != Idle {
		t.Fatal("engine should be idle after dispose")
	}
	if s.Context.State() != graph.Closed || !s.Released() {
		t.Fatal("session not released synchronously")
	}
	if got := s.Master.Gain.Value(); got != 0 {
		t.Fatalf("master gain = %v, want cut to 0", got)
	}
	if len(sched.timers) != 0 {
		t.Fatal("dispose must not schedule a fade")
	}
	if devs.outputs[0].closes != 1 {
		t.Fatalf("closes = %d, want 1", devs.outputs[0].closes)
	}

	e.Dispose()
	mustToggle(t, e)
	if !e.IsPlaying() {
		t.Fatal("engine should be reusable after dispose")
	}
	e.Dispose()
}

func TestDisposeWhileDraining(t *testing.T) {
	e, sched, devs := newTestEngine(t)
	mustToggle(t, e)
	s := e.current
	mustToggle(t, e)

	e.Dispose()
	if s.Context.State() != graph.Closed {
		t.Fatal("draining session not released")
	}
	if !sched.timers[0].stopped {
		t.Fatal("pending teardown timer not stopped")
	}
	sched.Advance(2 * time.Second)
	if devs.outputs[0].closes != 1 {
		t.Fatalf("closes = %d, want 1", devs.outputs[0].closes)
	}
	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}
}

func TestDisposeIdle(t *testing.T) {
	e, _, devs := newTestEngine(t)
	e.Dispose()
	if len(devs.contexts) != 0 || e.State() != Idle {
		t.Fatal("dispose on an idle engine should do nothing")
	}
}

func TestToggleUnavailable(t *testing.T) {
	e, _, devs := newTestEngine(t)
	cause := errors.New("audio blocked by policy")
	devs.fail = cause

	err := e.Toggle()
	if !errors.Is(err, ErrEngineUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want ErrEngineUnavailable wrapping the cause", err)
	}
	if e.IsPlaying() || e.State() != Idle || e.current != nil {
		t.Fatal("engine must stay idle")
	}

	devs.fail = nil
	mustToggle(t, e)
	if !e.IsPlaying() {
		t.Fatal("engine should start once audio is available")
	}
	e.Dispose()
}

func TestStaleTimerLeavesNewSessionAlone(t *testing.T) {
	e, sched, _ := newTestEngine(t)
	mustToggle(t, e)
	a := e.current
	mustToggle(t, e)
	sched.Advance(500 * time.Millisecond)
	mustToggle(t, e)
	b := e.current

	if a == b {
		t.Fatal("restart must build a new session")
	}
	if e.State() != Playing {
		t.Fatalf("state = %v, want playing", e.State())
	}
	if a.Context.State() != graph.Running {
		t.Fatal("superseded session should keep draining on its own timer")
	}

	sched.Advance(1300 * time.Millisecond)
	if a.Context.State() != graph.Closed {
		t.Fatal("stale timer did not release its own session")
	}
	if b.Context.State() != graph.Running || b.Released() {
		t.Fatal("stale timer touched the new session")
	}
	if !e.IsPlaying() || e.current != b {
		t.Fatal("new session should stay current")
	}
	e.Dispose()
}

func TestStrictRetrigger(t *testing.T) {
	e, sched, devs := newTestEngine(t, WithStrictRetrigger(true))
	mustToggle(t, e)
	a := e.current
	mustToggle(t, e)
	mustToggle(t, e)

	if a.Context.State() != graph.Closed {
		t.Fatal("draining session should be released before the restart")
	}
	if !sched.timers[0].stopped {
		t.Fatal("pending teardown timer should be cancelled")
	}
	if e.State() != Playing {
		t.Fatalf("state = %v, want playing", e.State())
	}
	sched.Advance(2 * time.Second)
	if devs.outputs[0].closes != 1 {
		t.Fatalf("closes = %d, want 1", devs.outputs[0].closes)
	}
	e.Dispose()
}

func TestNewEngineValidation(t *testing.T) {
	bad := DefaultParams()
	bad.Feedback = 1
	if _, err := NewEngine(WithParams(bad)); !errors.Is(err, ErrUnstableFeedback) {
		t.Errorf("feedback 1: err = %v, want ErrUnstableFeedback", err)
	}
	if _, err := NewEngine(WithBackend("jack")); !errors.Is(err, intaudio.ErrUnknownBackend) {
		t.Errorf("unknown backend: err = %v, want ErrUnknownBackend", err)
	}
	if _, err := NewEngine(WithSampleRate(0)); err == nil {
		t.Error("zero sample rate should fail")
	}
	e, err := NewEngine(WithParams(DefaultParams()))
	if err != nil {
		t.Fatal(err)
	}
	if e.Params() != DefaultParams() {
		t.Errorf("params = %+v, want defaults", e.Params())
	}
}

func TestEngineLogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	e, sched, _ := newTestEngine(t, WithLogger(logger))
	mustToggle(t, e)
	mustToggle(t, e)
	sched.Advance(2 * time.Second)

	out := buf.String()
	for _, msg := range []string{`"message":"playing"`, `"message":"draining"`, `"message":"released"`, `"session":`} {
		if !strings.Contains(out, msg) {
			t.Errorf("log missing %s:\n%s", msg, out)
		}
	}
}

func TestEngineWithNullBackend(t *testing.T) {
	e, err := NewEngine(WithBackend(intaudio.Null), WithSampleRate(8000), WithScheduler(&fakeScheduler{}))
	if err != nil {
		t.Fatal(err)
	}
	mustToggle(t, e)
	s := e.current
	deadline := time.Now().Add(2 * time.Second)
	for s.Context.CurrentTime() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("null backend never advanced the clock")
		}
		time.Sleep(5 * time.Millisecond)
	}
	e.Dispose()
	if s.Context.State() != graph.Closed {
		t.Fatal("context not closed")
	}
}

func TestWallClockFires(t *testing.T) {
	var clock Scheduler = wallClock{}
	done := make(chan struct{})
	clock.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	if !clock.AfterFunc(time.Hour, func() {}).Stop() {
		t.Fatal("stopping a pending timer should report true")
	}
}
