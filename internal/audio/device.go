package audio

import (
	"fmt"
	"sync"
)

// deviceContext holds the one context a playback library allows per process.
// The first caller opens it and fixes its sample rate; an open failure is
// returned to every later caller.
type deviceContext[T any] struct {
	name string
	once sync.Once
	rate int
	ctx  T
	err  error
}

func (d *deviceContext[T]) get(sampleRate int, open func(sampleRate int) (T, error)) (T, error) {
	d.once.Do(func() {
		d.rate = sampleRate
		d.ctx, d.err = open(sampleRate)
	})
	var zero T
	if d.err != nil {
		return zero, fmt.Errorf("audio: open %s context: %w", d.name, d.err)
	}
	if d.rate != sampleRate {
		return zero, fmt.Errorf("audio: %s context already open at %d Hz, %d Hz requested", d.name, d.rate, sampleRate)
	}
	return d.ctx, nil
}
