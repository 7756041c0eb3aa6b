package schedule

import (
	"log/slog"
	"math"
)

// PolynomialScheduler moves from SparsityInit to SparsityTarget along a
// polynomial curve of the training progress p = epoch / target_epoch:
//
//	concave: init - (init - target) * p^power
//	convex:  target - (target - init) * (1 - p)^power
//
// With UpdatePerOptimizerStep the level is also updated on every Step using
// the fractional epoch epoch + step/steps_per_epoch. When StepsPerEpoch is
// unknown it is learned from the first epoch and step updates are skipped
// until then.
type PolynomialScheduler struct {
	base
	power         float64
	concave       bool
	updatePerStep bool
	stepsPerEpoch int
	stepsInEpoch  int
	skip          bool
}

func newPolynomial(ctrl Controller, params Params) *PolynomialScheduler {
	s := &PolynomialScheduler{
		base:          newBase(ctrl, params),
		power:         params.Power,
		concave:       params.Concave,
		updatePerStep: params.UpdatePerOptimizerStep,
		stepsPerEpoch: params.StepsPerEpoch,
	}
	if s.updatePerStep && s.stepsPerEpoch <= 0 {
		slog.Warn("sparsity schedule: steps per epoch unknown, per-step updates start after the first epoch")
		s.skip = true
	}
	return s
}

// CurrentSparsityLevel returns the level for the current epoch and step.
func (s *PolynomialScheduler) CurrentSparsityLevel() float64 {
	return s.value(s.clampedEpoch(), max(s.stepsInEpoch-1, 0))
}

func (s *PolynomialScheduler) value(epoch, step int) float64 {
	if s.targetEpoch == 0 {
		return s.targetLevel
	}

	fractionalEpoch := float64(epoch)
	if s.updatePerStep && s.stepsPerEpoch > 0 {
		fractionalEpoch += float64(step) / float64(s.stepsPerEpoch)
	}
	progress := math.Min(1, math.Max(0, fractionalEpoch/float64(s.targetEpoch)))

	if s.concave {
		return s.initialLevel - (s.initialLevel-s.targetLevel)*math.Pow(progress, s.power)
	}
	return s.targetLevel - (s.targetLevel-s.initialLevel)*math.Pow(1-progress, s.power)
}

// Step counts an optimizer step and, when per-step updates are on, pushes
// the new level.
func (s *PolynomialScheduler) Step() error {
	s.stepsInEpoch++
	if s.skip || !s.updatePerStep {
		return nil
	}
	return s.ctrl.SetSparsityLevel(s.CurrentSparsityLevel())
}

// EpochStep advances to the next epoch.
func (s *PolynomialScheduler) EpochStep() error {
	if s.updatePerStep && s.stepsPerEpoch <= 0 && s.stepsInEpoch > 0 {
		s.stepsPerEpoch = s.stepsInEpoch
		s.skip = false
		slog.Debug("sparsity schedule: learned steps per epoch", "steps", s.stepsPerEpoch)
	}
	s.stepsInEpoch = 0
	return s.advance(s.CurrentSparsityLevel)
}

// StepsPerEpoch returns the configured or learned steps per epoch.
func (s *PolynomialScheduler) StepsPerEpoch() int {
	return s.stepsPerEpoch
}
