// Package nn implements the neural network modules that the sparsity engine
// operates on.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named trainable tensor
//   - Linear: Fully connected layer whose weight can be gated by a pre-op
//   - BatchNorm1d: Batch normalization with running statistics
//   - ReLU: Activation
//   - Sequential: Container for stacking layers
//   - Walk: Scope-named traversal of a module tree
package nn

import (
	"github.com/born-ml/sparsity/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10, rng),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters.
	Parameters() []*Parameter
}

// WeightPreOp transforms a layer weight right before it is used in Forward.
//
// The stored weight is never modified; Apply returns the tensor Forward
// should use instead.
type WeightPreOp interface {
	Apply(weight *tensor.Tensor) *tensor.Tensor
}

// WeightedModule is a module with a single weight tensor that can be gated
// by a WeightPreOp. These are the layers a sparsity algorithm can wrap.
type WeightedModule interface {
	Module

	// Weight returns the layer weight parameter.
	Weight() *Parameter

	// SetWeightPreOp installs op in front of the weight. A nil op removes it.
	SetWeightPreOp(op WeightPreOp)
}
