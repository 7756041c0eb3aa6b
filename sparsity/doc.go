// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sparsity prunes the weights of a model by magnitude.
//
// # Overview
//
// A Controller wraps every weighted layer of a model with a binary mask. A
// weight whose importance score is not strictly greater than the current
// threshold is masked out of every forward pass. The stored weights are
// never modified, so a training loop keeps updating them while the masks
// follow the chosen sparsity level.
//
// Thresholds are computed in one of two modes:
//   - Global: one threshold over the pooled scores of all layers, driven by
//     a schedule (polynomial, exponential or multistep).
//   - Local: one threshold per layer, so every layer reaches the level on
//     its own. Levels are set directly, without a schedule.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/sparsity/nn"
//	    "github.com/born-ml/sparsity/sparsity"
//	)
//
//	ctrl, err := sparsity.NewController(model, sparsity.Config{
//	    SparsityInit:   0.1,
//	    ScheduleParams: sparsity.DefaultScheduleParams(),
//	})
//	if err != nil {
//	    return err
//	}
//	for epoch := 0; epoch < epochs; epoch++ {
//	    if err := ctrl.Scheduler().EpochStep(); err != nil {
//	        return err
//	    }
//	    train(model)
//	}
//	ctrl.Statistics().Render(os.Stdout)
//
// # Concurrency
//
// A Controller is not safe for concurrent use. Mask updates must not overlap
// forward passes of the wrapped model.
package sparsity
