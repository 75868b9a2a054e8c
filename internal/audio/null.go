package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

// NullOutput pulls frames in real time and discards them. It keeps a
// context's clock moving on machines without a sound device.
type NullOutput struct {
	sampleRate int
	period     time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewNullOutput(sampleRate int) *NullOutput {
	return &NullOutput{sampleRate: sampleRate, period: 10 * time.Millisecond}
}

func (o *NullOutput) Start(src graph.Source) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stop != nil {
		return errors.New("audio: output already started")
	}
	o.stop = make(chan struct{})
	o.done = make(chan struct{})
	go o.run(src, o.stop, o.done)
	return nil
}

func (o *NullOutput) run(src graph.Source, stop, done chan struct{}) {
	defer close(done)
	frames := int(int64(o.sampleRate) * int64(o.period) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	buf := make([]float32, frames*2)
	ticker := time.NewTicker(o.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			src.Process(buf)
		}
	}
}

// Close stops pulling and waits for the pump goroutine. It is safe to call
// more than once.
func (o *NullOutput) Close() error {
	o.mu.Lock()
	stop, done := o.stop, o.done
	o.stop, o.done = nil, nil
	o.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}
