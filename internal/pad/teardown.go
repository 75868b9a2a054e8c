package pad

import (
	"errors"
	"fmt"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

// Teardown stops every generator of s and closes its context. A session is
// released once; later calls and a nil session are no-ops.
//
// Stopping a stopped generator and closing a closed context are treated as
// already done. Any other failure is collected and returned after every step
// has been attempted.
//
// With immediate set the master gain is cut to zero at once instead of
// relying on a finished fade-out.
func Teardown(s *Session, immediate bool) error {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	g := s.Master.Gain
	now := s.Context.CurrentTime()
	if err := g.CancelScheduledValues(now); err != nil {
		errs = append(errs, fmt.Errorf("cancel automation: %w", err))
	}
	if immediate {
		if err := g.SetValueAtTime(0, now); err != nil {
			errs = append(errs, fmt.Errorf("mute: %w", err))
		}
	}

	for i, o := range s.Generators() {
		if err := o.Stop(); err != nil && !errors.Is(err, graph.ErrNodeAlreadyStopped) {
			errs = append(errs, fmt.Errorf("stop generator %d: %w", i, err))
		}
	}
	if err := s.Context.Close(); err != nil && !errors.Is(err, graph.ErrContextClosed) {
		errs = append(errs, fmt.Errorf("close context: %w", err))
	}
	return errors.Join(errs...)
}
