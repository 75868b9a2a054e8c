// Package audio connects a graph.Context to an output device.
package audio

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

// Backend names accepted by NewOutput.
const (
	Ebiten = "ebiten"
	Oto    = "oto"
	Native = "native" // pulse on linux, miniaudio elsewhere
	Null   = "null"
)

var ErrUnknownBackend = errors.New("audio: unknown backend")

// Backends lists the selectable backend names, default first.
func Backends() []string {
	return []string{Ebiten, Oto, Native, Null}
}

// NewOutput returns an unstarted output for the named backend. An empty
// name selects ebiten. Device acquisition happens in Start.
func NewOutput(kind string, sampleRate int) (graph.Output, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", sampleRate)
	}
	switch strings.ToLower(kind) {
	case "", Ebiten:
		return &ebitenOutput{sampleRate: sampleRate}, nil
	case Oto:
		return &otoOutput{sampleRate: sampleRate}, nil
	case Native:
		return newNativeOutput(sampleRate), nil
	case Null:
		return NewNullOutput(sampleRate), nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownBackend, kind, strings.Join(Backends(), ", "))
}

// IsBackend reports whether kind names a known backend.
func IsBackend(kind string) bool {
	return kind == "" || slices.Contains(Backends(), strings.ToLower(kind))
}
