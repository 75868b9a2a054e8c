// Package ambientpad plays a slowly evolving ambient pad that fades in and
// out on a toggle.
package ambientpad

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	intaudio "github.com/cbegin/ambientpad-go/internal/audio"
	"github.com/cbegin/ambientpad-go/internal/graph"
	"github.com/cbegin/ambientpad-go/internal/pad"
)

// State is the engine's lifecycle state.
type State int

const (
	Idle State = iota
	Playing
	// Draining means a fade-out is running and its teardown has not fired.
	// IsPlaying already reports false.
	Draining
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Draining:
		return "draining"
	}
	return "idle"
}

// Timer is a pending deferred call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Engine owns at most one playing pad session. Toggle starts a session with a
// fade-in or fades the current one out and schedules its teardown. Dispose
// releases everything at once.
type Engine struct {
	mu         sync.Mutex
	cfg        engineConfig
	log        zerolog.Logger
	newContext pad.ContextFactory
	playing    bool
	current    *pad.Session
	draining   map[*pad.Session]Timer
}

func NewEngine(opts ...EngineOption) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.params.Validate(); err != nil {
		return nil, err
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("ambientpad: sampleRate must be positive")
	}
	if !intaudio.IsBackend(cfg.backend) {
		return nil, fmt.Errorf("%w %q", intaudio.ErrUnknownBackend, cfg.backend)
	}
	e := &Engine{
		cfg:      cfg,
		log:      cfg.logger.With().Str("component", "ambientpad").Logger(),
		draining: make(map[*pad.Session]Timer),
	}
	e.newContext = cfg.contextFactory
	if e.newContext == nil {
		e.newContext = func() (*graph.Context, error) {
			out, err := intaudio.NewOutput(cfg.backend, cfg.sampleRate)
			if err != nil {
				return nil, err
			}
			return graph.NewContext(cfg.sampleRate, out)
		}
	}
	return e, nil
}

// Params returns the parameters every new session is built with.
func (e *Engine) Params() Params { return e.cfg.params }

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.playing:
		return Playing
	case len(e.draining) > 0:
		return Draining
	}
	return Idle
}

// Toggle switches between playing and idle. Starting may fail with
// ErrEngineUnavailable, in which case the engine stays idle. Stopping
// reports idle immediately; the session is torn down once its fade-out
// has finished.
func (e *Engine) Toggle() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing {
		e.fadeOutLocked()
		return nil
	}
	return e.startLocked()
}

func (e *Engine) startLocked() error {
	if e.cfg.strictRetrigger {
		for s, t := range e.draining {
			t.Stop()
			delete(e.draining, s)
			e.teardownLocked(s, true)
		}
	}

	s, err := pad.Build(e.newContext, e.cfg.params)
	if err != nil {
		e.log.Error().Err(err).Msg("start failed")
		return err
	}
	if err := pad.FadeIn(s); err != nil {
		e.teardownLocked(s, true)
		return fmt.Errorf("ambientpad: fade in: %w", err)
	}
	e.current = s
	e.playing = true
	e.log.Debug().Uint64("session", s.ID).Int("draining", len(e.draining)).Msg("playing")
	return nil
}

func (e *Engine) fadeOutLocked() {
	s := e.current
	e.current = nil
	e.playing = false
	if s == nil {
		return
	}
	deadline, err := pad.FadeOut(s)
	if err != nil {
		e.log.Warn().Err(err).Uint64("session", s.ID).Msg("fade out failed, releasing now")
		e.teardownLocked(s, true)
		return
	}
	// The callback only ever sees its own session.
	e.draining[s] = e.cfg.scheduler.AfterFunc(deadline, func() { e.finish(s) })
	e.log.Debug().Uint64("session", s.ID).Dur("deadline", deadline).Msg("draining")
}

// finish runs when a fade-out deadline elapses.
func (e *Engine) finish(s *pad.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.draining[s]; !ok {
		return
	}
	delete(e.draining, s)
	e.teardownLocked(s, false)
}

// Dispose tears down the current session and any draining ones without a
// fade. The engine is idle afterwards and may be toggled again.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s := e.current; s != nil {
		e.current = nil
		e.teardownLocked(s, true)
	}
	for s, t := range e.draining {
		t.Stop()
		delete(e.draining, s)
		e.teardownLocked(s, true)
	}
	e.playing = false
}

func (e *Engine) teardownLocked(s *pad.Session, immediate bool) {
	if err := pad.Teardown(s, immediate); err != nil {
		e.log.Warn().Err(err).Uint64("session", s.ID).Bool("immediate", immediate).Msg("teardown")
		return
	}
	e.log.Debug().Uint64("session", s.ID).Bool("immediate", immediate).Msg("released")
}
