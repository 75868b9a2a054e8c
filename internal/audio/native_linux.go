//go:build linux

package audio

import (
	"errors"
	"fmt"

	"github.com/jfreymuth/pulse"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

type pulseOutput struct {
	sampleRate int
	client     *pulse.Client
	stream     *pulse.PlaybackStream
}

func newNativeOutput(sampleRate int) graph.Output {
	return &pulseOutput{sampleRate: sampleRate}
}

func (o *pulseOutput) Start(src graph.Source) error {
	if o.stream != nil {
		return errors.New("audio: output already started")
	}
	c, err := pulse.NewClient(pulse.ClientApplicationName("ambientpad"))
	if err != nil {
		return fmt.Errorf("pulse: %w", err)
	}
	reader := pulse.Float32Reader(func(buf []float32) (int, error) {
		n := len(buf) &^ 1
		src.Process(buf[:n])
		clear(buf[n:])
		return len(buf), nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(o.sampleRate),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		c.Close()
		return fmt.Errorf("pulse playback: %w", err)
	}
	stream.Start()
	o.client = c
	o.stream = stream
	return nil
}

func (o *pulseOutput) Close() error {
	if o.stream == nil {
		return nil
	}
	o.stream.Stop()
	o.stream.Close()
	o.client.Close()
	o.stream = nil
	o.client = nil
	return nil
}
