package ambientpad

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/ambientpad-go/internal/graph"
	"github.com/cbegin/ambientpad-go/internal/pad"
)

// RenderSamples renders one complete session without a device: fade-in,
// hold for the given time, fade-out. The result is interleaved stereo and
// lasts FadeIn + hold + the fade-out deadline.
func RenderSamples(p Params, sampleRate int, hold time.Duration) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("ambientpad: sampleRate must be positive")
	}
	if hold < 0 {
		hold = 0
	}
	s, err := pad.Build(func() (*graph.Context, error) {
		return graph.NewContext(sampleRate, nil)
	}, p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = pad.Teardown(s, true) }()

	if err := pad.FadeIn(s); err != nil {
		return nil, err
	}
	head := frames(pad.FadeInDuration+hold, sampleRate)
	out := make([]float32, 2*head, 2*(head+frames(pad.FadeOutDuration+pad.TeardownMargin, sampleRate)))
	s.Context.Process(out)

	deadline, err := pad.FadeOut(s)
	if err != nil {
		return nil, err
	}
	tail := make([]float32, 2*frames(deadline, sampleRate))
	s.Context.Process(tail)
	out = append(out, tail...)

	if err := pad.Teardown(s, false); err != nil {
		return nil, err
	}
	return out, nil
}

func frames(d time.Duration, sampleRate int) int {
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

// EncodeWAV writes interleaved stereo samples as 16-bit PCM. Samples outside
// [-1, 1] are clipped.
func EncodeWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		if math.IsNaN(v) {
			v = 0
		}
		data[i] = int(math.Round(v * math.MaxInt16))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("ambientpad: encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("ambientpad: finish wav: %w", err)
	}
	return nil
}
