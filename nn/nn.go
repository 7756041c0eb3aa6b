// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// WeightedModule is a module with one weight that accepts a pre-op.
type WeightedModule = nn.WeightedModule

// WeightPreOp transforms a weight before a forward pass uses it.
type WeightPreOp = nn.WeightPreOp

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	layer := nn.NewLinear(784, 128, rand.New(rand.NewSource(1)))
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// BatchNorm1d normalizes [batch, features] inputs.
type BatchNorm1d = nn.BatchNorm1d

// NewBatchNorm1d creates a batch normalization layer in training mode.
func NewBatchNorm1d(features int, epsilon, momentum float32) *BatchNorm1d {
	return nn.NewBatchNorm1d(features, epsilon, momentum)
}

// Activations

// ReLU applies max(0, x) element-wise.
type ReLU = nn.ReLU

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Containers

// Sequential chains modules in order.
type Sequential = nn.Sequential

// NewSequential creates a Sequential container.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10, rng),
//	)
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// WalkFunc is called for every module visited by Walk.
type WalkFunc = nn.WalkFunc

// Walk visits root and every nested module depth-first with its scope.
func Walk(root Module, fn WalkFunc) error {
	return nn.Walk(root, fn)
}
