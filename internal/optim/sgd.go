package optim

import (
	"fmt"

	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter]*tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step performs a single optimization step.
//
// Panics if a gradient's shape differs from its parameter's.
func (s *SGD) Step(grads Gradients) {
	for _, param := range s.params {
		grad, ok := grads[param]
		if !ok || grad == nil {
			continue
		}
		if !grad.Shape().Equal(param.Tensor().Shape()) {
			panic(fmt.Sprintf("SGD.Step: gradient shape %v does not match parameter %s shape %v",
				grad.Shape(), param.Name(), param.Tensor().Shape()))
		}

		update := grad.Data()
		if s.momentum != 0 {
			update = s.accumulate(param, grad)
		}

		data := param.Tensor().Data()
		for i, g := range update {
			data[i] -= s.lr * g
		}
	}
}

// accumulate folds grad into the parameter's velocity and returns it.
func (s *SGD) accumulate(param *nn.Parameter, grad *tensor.Tensor) []float32 {
	velocity, exists := s.velocities[param]
	if !exists {
		velocity = tensor.Zeros(param.Tensor().Shape())
		s.velocities[param] = velocity
	}

	v := velocity.Data()
	for i, g := range grad.Data() {
		v[i] = s.momentum*v[i] + g
	}
	return v
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
