// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sparsity

import (
	"github.com/born-ml/sparsity/internal/adaptation"
	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/schedule"
	"github.com/born-ml/sparsity/internal/sparsity"
)

// Controller applies magnitude sparsity to a model.
type Controller = sparsity.Controller

// Config configures a Controller.
type Config = sparsity.Config

// LevelOptions refine Controller.SetSparsityLevelWithOptions.
type LevelOptions = sparsity.LevelOptions

// ModuleInfo ties a sparsified layer to its mask.
type ModuleInfo = sparsity.ModuleInfo

// BinaryMask is the mask installed on each sparsified layer.
type BinaryMask = sparsity.BinaryMask

// NewController wraps the weighted layers of model and applies
// cfg.SparsityInit.
func NewController(model nn.Module, cfg Config) (*Controller, error) {
	return sparsity.NewController(model, cfg)
}

// Modes and importance functions

// Mode selects how thresholds are computed.
type Mode = sparsity.Mode

// Threshold modes.
const (
	Global = sparsity.Global
	Local  = sparsity.Local
)

// Importance selects the per-element importance score.
type Importance = sparsity.Importance

// Importance functions.
const (
	NormedAbs = sparsity.NormedAbs
	Abs       = sparsity.Abs
)

// CompressionStage is a coarse progress indicator.
type CompressionStage = sparsity.CompressionStage

// Compression stages.
const (
	Uncompressed        = sparsity.Uncompressed
	PartiallyCompressed = sparsity.PartiallyCompressed
	FullyCompressed     = sparsity.FullyCompressed
)

// Statistics

// MagnitudeStatistics is the report returned by Controller.Statistics.
type MagnitudeStatistics = sparsity.MagnitudeStatistics

// ModelStatistics summarizes sparsity over the whole model.
type ModelStatistics = sparsity.ModelStatistics

// LayerSummary describes one sparsified layer.
type LayerSummary = sparsity.LayerSummary

// LayerThreshold is the threshold reported for a layer.
type LayerThreshold = sparsity.LayerThreshold

// Schedules

// Scheduler computes the sparsity level over training.
type Scheduler = schedule.Scheduler

// ScheduleParams holds the schedule parameters.
type ScheduleParams = schedule.Params

// DefaultScheduleParams returns the default schedule parameters.
func DefaultScheduleParams() ScheduleParams {
	return schedule.DefaultParams()
}

// Adaptation

// AdaptationParams configures the adaptation routine.
type AdaptationParams = adaptation.Params

// AdaptationRoutine runs over the model after masks change.
type AdaptationRoutine = adaptation.Routine

// AdaptationFactory builds the adaptation routine on first use.
type AdaptationFactory = adaptation.Factory

// Errors

// Errors returned by the controller.
var (
	ErrOutOfRange    = sparsity.ErrOutOfRange
	ErrConfiguration = sparsity.ErrConfiguration
	ErrUnknownLayer  = sparsity.ErrUnknownLayer
	ErrNoAdaptation  = sparsity.ErrNoAdaptation
)

// OutOfRangeError is returned for a level outside [0, 1).
type OutOfRangeError = sparsity.OutOfRangeError

// ConfigurationError is returned for an unknown configuration value.
type ConfigurationError = sparsity.ConfigurationError
