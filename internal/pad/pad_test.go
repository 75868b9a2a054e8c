package pad

import (
	"testing"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

// countingOutput records how often the context attached to it is released.
type countingOutput struct {
	closeErr error
	closes   int
}

func (o *countingOutput) Start(graph.Source) error { return nil }

func (o *countingOutput) Close() error {
	o.closes++
	return o.closeErr
}

func offlineFactory(sampleRate int) ContextFactory {
	return func() (*graph.Context, error) {
		return graph.NewContext(sampleRate, nil)
	}
}

func countingFactory(out *countingOutput) ContextFactory {
	return func() (*graph.Context, error) {
		return graph.NewContext(8000, out)
	}
}

func build(t *testing.T, newContext ContextFactory) *Session {
	t.Helper()
	s, err := Build(newContext, DefaultParams())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return s
}

func advance(s *Session, seconds float64) {
	frames := int(seconds * float64(s.Context.SampleRate()))
	s.Context.Process(make([]float32, frames*2))
}
