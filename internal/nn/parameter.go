package nn

import (
	"github.com/born-ml/sparsity/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters typically represent weights and biases of layers. The tensor is
// shared with whoever updates it (an optimizer, a loader); readers must not
// assume it stays constant between calls.
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor // The parameter tensor
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// NumElements returns the number of scalar values in the parameter.
func (p *Parameter) NumElements() int {
	return p.tensor.NumElements()
}
