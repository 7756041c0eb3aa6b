package schedule

import "math"

// ExponentialScheduler decays the dense fraction (1 - level) exponentially
// from 1 - SparsityInit to 1 - SparsityTarget at SparsityTargetEpoch. The
// level never exceeds SparsityTarget.
type ExponentialScheduler struct {
	base
	decay float64
}

func newExponential(ctrl Controller, params Params) *ExponentialScheduler {
	s := &ExponentialScheduler{base: newBase(ctrl, params)}
	if s.targetEpoch > 0 {
		s.decay = math.Log((1-s.targetLevel)/(1-s.initialLevel)) / float64(s.targetEpoch)
	}
	return s
}

// CurrentSparsityLevel returns the level for the current epoch.
func (s *ExponentialScheduler) CurrentSparsityLevel() float64 {
	if s.targetEpoch == 0 {
		return s.targetLevel
	}
	dense := (1 - s.initialLevel) * math.Exp(s.decay*float64(s.clampedEpoch()))
	return math.Min(1-dense, s.targetLevel)
}

// Step is a no-op; the level only changes per epoch.
func (s *ExponentialScheduler) Step() error {
	return nil
}

// EpochStep advances to the next epoch.
func (s *ExponentialScheduler) EpochStep() error {
	return s.advance(s.CurrentSparsityLevel)
}
