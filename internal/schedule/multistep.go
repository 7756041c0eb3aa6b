package schedule

import (
	"fmt"
	"slices"
	"sort"
)

// MultiStepScheduler holds a constant level between epoch boundaries.
// Before MultistepSteps[0] the level is MultistepSparsityLevels[0]; from
// MultistepSteps[i] on it is MultistepSparsityLevels[i+1]. The target level
// is the last one.
type MultiStepScheduler struct {
	base
	steps  []int
	levels []float64
}

func newMultiStep(ctrl Controller, params Params) (*MultiStepScheduler, error) {
	steps := params.MultistepSteps
	levels := params.MultistepSparsityLevels
	if len(levels) != len(steps)+1 {
		return nil, fmt.Errorf("%w: %d multistep levels for %d steps, want %d",
			ErrInvalidParams, len(levels), len(steps), len(steps)+1)
	}
	if !slices.IsSorted(steps) {
		return nil, fmt.Errorf("%w: multistep steps %v are not ascending", ErrInvalidParams, steps)
	}
	for _, l := range levels {
		if l < 0 || l >= 1 {
			return nil, fmt.Errorf("%w: multistep level %v not in [0,1)", ErrInvalidParams, l)
		}
	}

	s := &MultiStepScheduler{
		base:   newBase(ctrl, params),
		steps:  slices.Clone(steps),
		levels: slices.Clone(levels),
	}
	s.initialLevel = levels[0]
	s.targetLevel = levels[len(levels)-1]
	return s, nil
}

// CurrentSparsityLevel returns the level of the interval holding the
// current epoch.
func (s *MultiStepScheduler) CurrentSparsityLevel() float64 {
	epoch := s.epoch
	i := sort.Search(len(s.steps), func(i int) bool { return s.steps[i] > epoch })
	return s.levels[i]
}

// Step is a no-op; the level only changes per epoch.
func (s *MultiStepScheduler) Step() error {
	return nil
}

// EpochStep advances to the next epoch.
func (s *MultiStepScheduler) EpochStep() error {
	return s.advance(s.CurrentSparsityLevel)
}
