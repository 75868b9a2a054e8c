package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbegin/ambientpad-go"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML preset (default $"+ambientpad.ConfigEnv+")")
		sampleRate = flag.Int("sample-rate", ambientpad.DefaultSampleRate, "output sample rate")
		hold       = flag.Duration("hold", 10*time.Second, "time at full level between the fades")
		outPath    = flag.String("out", "pad.wav", "output WAV path")
		logLevel   = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		logger = logger.Level(lvl)
	} else {
		logger.Warn().Str("level", *logLevel).Msg("unknown log level, using info")
		logger = logger.Level(zerolog.InfoLevel)
	}

	if err := render(logger, *configPath, *outPath, *sampleRate, *hold); err != nil {
		logger.Fatal().Err(err).Msg("render failed")
	}
}

func render(logger zerolog.Logger, configPath, outPath string, sampleRate int, hold time.Duration) error {
	params, err := ambientpad.LoadConfig(configPath)
	if err != nil {
		return err
	}
	start := time.Now()
	samples, err := ambientpad.RenderSamples(params, sampleRate, hold)
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := ambientpad.EncodeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info().
		Str("out", outPath).
		Int("frames", len(samples)/2).
		Dur("elapsed", time.Since(start)).
		Msg("rendered")
	return nil
}
