// Package optim implements the optimizers that update layer weights while a
// sparsity schedule runs.
//
// Masks never write to weights, so an optimizer keeps updating masked
// weights too; a weight that grows back above the threshold is kept again
// at the next mask update.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	for step := range steps {
//	    grads := computeGradients(model, batch)
//	    optimizer.Step(grads)
//	    if err := scheduler.Step(); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/tensor"
)

// Gradients maps each parameter to its gradient. The gradient has the
// parameter's shape.
type Gradients map[*nn.Parameter]*tensor.Tensor

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	// Parameters without a gradient are skipped.
	Step(grads Gradients)

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}
