package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cbegin/ambientpad-go"
)

func main() {
	var (
		backend    = flag.String("backend", "ebiten", "audio backend: ebiten|oto|native|null")
		configPath = flag.String("config", "", "TOML preset (default $"+ambientpad.ConfigEnv+")")
		sampleRate = flag.Int("sample-rate", ambientpad.DefaultSampleRate, "output sample rate")
		strict     = flag.Bool("strict", false, "cancel a pending fade-out teardown when restarting")
		logPath    = flag.String("log", "", "write logs to this file")
		logLevel   = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()

	startup := newStartupLogger(os.Stderr)
	logger, closeLog, err := newLogger(*logPath, *logLevel)
	if err != nil {
		startup.Fatal().Err(err).Str("path", *logPath).Msg("open log")
	}
	defer closeLog()

	params, err := ambientpad.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("load config")
		startup.Fatal().Err(err).Str("config", *configPath).Msg("load config")
	}
	engine, err := ambientpad.NewEngine(
		ambientpad.WithParams(params),
		ambientpad.WithBackend(*backend),
		ambientpad.WithSampleRate(*sampleRate),
		ambientpad.WithStrictRetrigger(*strict),
		ambientpad.WithLogger(logger),
	)
	if err != nil {
		logger.Error().Err(err).Msg("create engine")
		startup.Fatal().Err(err).Str("backend", *backend).Msg("create engine")
	}
	defer engine.Dispose()
	logger.Info().Str("backend", *backend).Int("sample_rate", *sampleRate).Msg("ready")

	if err := run(engine, newModel(engine, *backend)); err != nil {
		logger.Error().Err(err).Msg("exit")
		engine.Dispose()
		closeLog()
		os.Exit(1)
	}
}

// run drives the TUI until the user quits or the process is signalled.
func run(engine *ambientpad.Engine, m model) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		engine.Dispose()
		p.Quit()
		return nil
	})
	return g.Wait()
}

// newStartupLogger reports failures that happen before the TUI takes over
// the terminal.
func newStartupLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
}

func newLogger(path, level string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("log level: %w", err)
	}
	// the TUI owns the terminal, so logs only go to a file
	if path == "" {
		return zerolog.New(io.Discard).Level(lvl), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}
	w := zerolog.ConsoleWriter{Out: f, TimeFormat: "2006-01-02 15:04:05", NoColor: true}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Int("pid", os.Getpid()).Logger()
	return logger, func() { f.Close() }, nil
}
