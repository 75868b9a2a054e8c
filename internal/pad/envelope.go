package pad

import "time"

const (
	// Floor is the near-silent level fades start from and end at.
	// Exponential ramps cannot reach zero.
	Floor = 0.0001
	// TargetGain is the master level at the end of a fade-in.
	TargetGain = 0.12

	FadeInDuration  = 2 * time.Second
	FadeOutDuration = 1500 * time.Millisecond
	// TeardownMargin is added to FadeOutDuration before generators may stop.
	TeardownMargin = 200 * time.Millisecond
)

// FadeIn pins the master gain to Floor at the current time and ramps it
// exponentially to TargetGain over FadeInDuration.
func FadeIn(s *Session) error {
	g := s.Master.Gain
	now := s.Context.CurrentTime()
	if err := g.CancelScheduledValues(now); err != nil {
		return err
	}
	if err := g.SetValueAtTime(Floor, now); err != nil {
		return err
	}
	return g.ExponentialRampToValueAtTime(TargetGain, now+FadeInDuration.Seconds())
}

// FadeOut cancels pending automation, holds the gain it had reached and
// ramps linearly to Floor over FadeOutDuration. The returned deadline is how
// long the caller must wait before tearing the session down.
func FadeOut(s *Session) (time.Duration, error) {
	g := s.Master.Gain
	now := s.Context.CurrentTime()
	// Read before cancelling: the cancel drops an event set at exactly now.
	held := g.Value()
	if err := g.CancelScheduledValues(now); err != nil {
		return 0, err
	}
	if err := g.SetValueAtTime(held, now); err != nil {
		return 0, err
	}
	if err := g.LinearRampToValueAtTime(Floor, now+FadeOutDuration.Seconds()); err != nil {
		return 0, err
	}
	return FadeOutDuration + TeardownMargin, nil
}
