// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers a sparsity controller operates on.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, BatchNorm1d
//   - Activations: ReLU
//   - Utilities: Sequential, Module, WeightedModule, Parameter, Walk
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/sparsity/nn"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewSource(1))
//
//	    // Build a simple MLP
//	    model := nn.NewSequential(
//	        nn.NewLinear(784, 128, rng),
//	        nn.NewBatchNorm1d(128, 1e-5, 0.1),
//	        nn.NewReLU(),
//	        nn.NewLinear(128, 10, rng),
//	    )
//
//	    // Forward pass
//	    output := model.Forward(input)
//	}
//
// # Weight pre-ops
//
// A WeightedModule multiplies its weight by an installed WeightPreOp on
// every forward pass. The sparsity package installs its binary masks this
// way, so the stored weight is never rewritten.
//
// # Scopes
//
// Walk names every module by its path from the root, for example
// "Sequential/Linear[0]". These scopes are the layer names used by the
// sparsity controller and its ignored scopes.
package nn
