package audio

import (
	"encoding/binary"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

// bytesPerFrame is one interleaved stereo frame of float32 samples.
const bytesPerFrame = 8

// stateful is implemented by sources with a lifecycle, such as *graph.Context.
type stateful interface {
	State() graph.State
}

// StreamReader pulls stereo frames from a graph.Source and encodes them as
// float32 little-endian bytes for the ebiten, oto and malgo players. Once the
// reader is closed, or its source reports graph.Closed, Read returns io.EOF so
// a player stops pulling a context that can only render silence.
type StreamReader struct {
	mu      sync.Mutex
	source  graph.Source
	samples []float32
	ended   bool
}

func NewStreamReader(source graph.Source) *StreamReader {
	return &StreamReader{source: source}
}

// Read fills whole frames only; a trailing partial frame in p is left unused.
func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished() {
		return 0, io.EOF
	}
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	r.samples = slices.Grow(r.samples[:0], 2*frames)[:2*frames]
	r.source.Process(r.samples)

	out := p[:0]
	for _, v := range r.samples {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return len(out), nil
}

func (r *StreamReader) finished() bool {
	if !r.ended {
		if s, ok := r.source.(stateful); ok && s.State() == graph.Closed {
			r.ended = true
		}
	}
	return r.ended
}

// Close ends the stream; later reads return io.EOF.
func (r *StreamReader) Close() error {
	r.mu.Lock()
	r.ended = true
	r.mu.Unlock()
	return nil
}
