// Package schedule decides the sparsity level over training epochs and pushes
// it into a sparsity controller.
//
// A Scheduler is stepped by the training loop: EpochStep at the start of every
// epoch and, optionally, Step after every optimizer step. Each update calls
// Controller.SetSparsityLevel; once the freeze epoch is reached the
// controller is frozen.
//
// Example:
//
//	sched, err := schedule.New(schedule.Polynomial, ctrl, schedule.DefaultParams())
//	for epoch := range epochs {
//	    if err := sched.EpochStep(); err != nil {
//	        return err
//	    }
//	    train(epoch)
//	}
package schedule

import (
	"errors"
	"fmt"
	"log/slog"
)

// Common errors.
var (
	ErrUnknownSchedule = errors.New("unknown sparsity schedule")
	ErrInvalidParams   = errors.New("invalid schedule parameters")
)

// Controller is the write side a Scheduler drives.
type Controller interface {
	SetSparsityLevel(level float64) error
	Freeze()
}

// Scheduler computes the sparsity level for the current training position.
type Scheduler interface {
	// CurrentSparsityLevel returns the level for the current epoch/step.
	CurrentSparsityLevel() float64

	// TargetLevel returns the level the schedule converges to.
	TargetLevel() float64

	// CurrentEpoch returns the epoch index, -1 before the first EpochStep.
	CurrentEpoch() int

	// Step marks one optimizer step.
	Step() error

	// EpochStep advances to the next epoch and applies its level.
	EpochStep() error
}

// Kind selects a scheduler implementation.
type Kind int

// Supported schedules.
const (
	Polynomial Kind = iota
	Exponential
	MultiStep
)

// DefaultKind is used when no schedule key is configured.
const DefaultKind = Polynomial

var kindKeys = map[string]Kind{
	"polynomial":  Polynomial,
	"exponential": Exponential,
	"multistep":   MultiStep,
}

// ParseKind resolves a configuration key. An empty key selects DefaultKind.
func ParseKind(key string) (Kind, error) {
	if key == "" {
		return DefaultKind, nil
	}
	k, ok := kindKeys[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSchedule, key)
	}
	return k, nil
}

// String returns the configuration key of the schedule.
func (k Kind) String() string {
	switch k {
	case Polynomial:
		return "polynomial"
	case Exponential:
		return "exponential"
	case MultiStep:
		return "multistep"
	default:
		return "unknown"
	}
}

// Params holds the parameters shared by all schedules plus the
// schedule-specific ones.
type Params struct {
	SparsityInit        float64 // Level at epoch 0
	SparsityTarget      float64 // Level reached at SparsityTargetEpoch
	SparsityTargetEpoch int     // Epoch at which SparsityTarget is reached
	SparsityFreezeEpoch int     // Epoch from which the controller is frozen

	// Polynomial
	Power                  float64
	Concave                bool
	UpdatePerOptimizerStep bool
	StepsPerEpoch          int // 0 means learn it from the first epoch

	// MultiStep
	MultistepSteps          []int     // Epoch boundaries, ascending
	MultistepSparsityLevels []float64 // len(MultistepSteps)+1 levels
}

// DefaultParams returns the default schedule parameters.
func DefaultParams() Params {
	return Params{
		SparsityInit:            0,
		SparsityTarget:          0.5,
		SparsityTargetEpoch:     90,
		SparsityFreezeEpoch:     100,
		Power:                   0.9,
		Concave:                 true,
		MultistepSteps:          []int{90},
		MultistepSparsityLevels: []float64{0.1, 0.5},
	}
}

func (p Params) validate() error {
	if p.SparsityInit < 0 || p.SparsityInit >= 1 {
		return fmt.Errorf("%w: sparsity_init %v not in [0,1)", ErrInvalidParams, p.SparsityInit)
	}
	if p.SparsityTarget < 0 || p.SparsityTarget >= 1 {
		return fmt.Errorf("%w: sparsity_target %v not in [0,1)", ErrInvalidParams, p.SparsityTarget)
	}
	if p.SparsityTargetEpoch < 0 {
		return fmt.Errorf("%w: negative sparsity_target_epoch %d", ErrInvalidParams, p.SparsityTargetEpoch)
	}
	if p.SparsityFreezeEpoch < 0 {
		return fmt.Errorf("%w: negative sparsity_freeze_epoch %d", ErrInvalidParams, p.SparsityFreezeEpoch)
	}
	return nil
}

// New creates a scheduler of the given kind driving ctrl.
func New(kind Kind, ctrl Controller, params Params) (Scheduler, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	switch kind {
	case Polynomial:
		return newPolynomial(ctrl, params), nil
	case Exponential:
		return newExponential(ctrl, params), nil
	case MultiStep:
		return newMultiStep(ctrl, params)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownSchedule, kind)
	}
}

// base carries the epoch counter and the freeze logic.
type base struct {
	ctrl         Controller
	initialLevel float64
	targetLevel  float64
	targetEpoch  int
	freezeEpoch  int
	epoch        int
	frozen       bool
}

func newBase(ctrl Controller, params Params) base {
	return base{
		ctrl:         ctrl,
		initialLevel: params.SparsityInit,
		targetLevel:  params.SparsityTarget,
		targetEpoch:  params.SparsityTargetEpoch,
		freezeEpoch:  params.SparsityFreezeEpoch,
		epoch:        -1,
	}
}

func (b *base) CurrentEpoch() int {
	return b.epoch
}

func (b *base) TargetLevel() float64 {
	return b.targetLevel
}

// advance moves to the next epoch, pushes level() and freezes when due.
func (b *base) advance(level func() float64) error {
	b.epoch++
	if err := b.ctrl.SetSparsityLevel(level()); err != nil {
		return err
	}
	b.maybeFreeze()
	return nil
}

func (b *base) maybeFreeze() {
	if b.epoch < b.freezeEpoch {
		return
	}
	if !b.frozen {
		slog.Info("sparsity schedule: freezing masks", "epoch", b.epoch)
	}
	b.frozen = true
	b.ctrl.Freeze()
}

// clampedEpoch is the epoch used in level formulas; it is 0 before the
// first EpochStep.
func (b *base) clampedEpoch() int {
	return max(b.epoch, 0)
}
