package ambientpad

import (
	"github.com/rs/zerolog"

	intaudio "github.com/cbegin/ambientpad-go/internal/audio"
	"github.com/cbegin/ambientpad-go/internal/pad"
)

// DefaultSampleRate is used unless WithSampleRate says otherwise.
const DefaultSampleRate = 48000

type EngineOption func(*engineConfig)

type engineConfig struct {
	params          Params
	backend         string
	sampleRate      int
	logger          zerolog.Logger
	scheduler       Scheduler
	strictRetrigger bool
	contextFactory  pad.ContextFactory
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		params:     DefaultParams(),
		backend:    intaudio.Ebiten,
		sampleRate: DefaultSampleRate,
		logger:     zerolog.Nop(),
		scheduler:  wallClock{},
	}
}

func WithParams(p Params) EngineOption {
	return func(cfg *engineConfig) {
		cfg.params = p
	}
}

// WithBackend selects the output device backend: "ebiten" (default), "oto",
// "native" or "null".
func WithBackend(name string) EngineOption {
	return func(cfg *engineConfig) {
		cfg.backend = name
	}
}

func WithSampleRate(sampleRate int) EngineOption {
	return func(cfg *engineConfig) {
		cfg.sampleRate = sampleRate
	}
}

func WithLogger(l zerolog.Logger) EngineOption {
	return func(cfg *engineConfig) {
		cfg.logger = l
	}
}

// WithScheduler replaces the wall-clock timer used for deferred teardown.
func WithScheduler(s Scheduler) EngineOption {
	return func(cfg *engineConfig) {
		if s != nil {
			cfg.scheduler = s
		}
	}
}

// WithStrictRetrigger makes a start cancel any pending fade-out teardown and
// release those sessions before building a new one. By default a draining
// session runs out its fade on its own timer alongside the new session.
func WithStrictRetrigger(enabled bool) EngineOption {
	return func(cfg *engineConfig) {
		cfg.strictRetrigger = enabled
	}
}

func withContextFactory(f pad.ContextFactory) EngineOption {
	return func(cfg *engineConfig) {
		cfg.contextFactory = f
	}
}
