// Package adaptation re-estimates normalization statistics after sparsity
// masks change.
//
// Masking weights shifts the distribution of the activations that follow, so
// the running statistics of batch normalization layers go stale. A Routine
// fixes that by running forward passes over sample data.
package adaptation

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/tensor"
)

// ErrInvalidParams is returned for non-positive sample counts or batch sizes.
var ErrInvalidParams = errors.New("invalid adaptation parameters")

// Params configures the adaptation routine. They are forwarded verbatim from
// the algorithm configuration.
type Params struct {
	NumSamples int // Samples to push through the model
	BatchSize  int // Samples per forward pass
}

// DefaultParams returns the default adaptation parameters.
func DefaultParams() Params {
	return Params{
		NumSamples: 2000,
		BatchSize:  32,
	}
}

// Batches returns the number of forward passes needed to cover NumSamples.
func (p Params) Batches() int {
	return (p.NumSamples + p.BatchSize - 1) / p.BatchSize
}

// Routine runs over a model after its masks changed.
type Routine interface {
	Run(model nn.Module) error
}

// Factory builds a Routine from its parameters.
type Factory func(Params) (Routine, error)

// Func adapts an ordinary function to the Routine interface.
type Func func(model nn.Module) error

// Run calls f(model).
func (f Func) Run(model nn.Module) error {
	return f(model)
}

// DataSource yields input batches for adaptation forward passes.
type DataSource interface {
	Next(batchSize int) (*tensor.Tensor, error)
}

// RandomSource yields standard normal [batch, features] inputs.
type RandomSource struct {
	features int
	rng      *rand.Rand
}

// NewRandomSource creates a RandomSource.
func NewRandomSource(features int, rng *rand.Rand) *RandomSource {
	return &RandomSource{features: features, rng: rng}
}

// Next returns a fresh batch.
func (s *RandomSource) Next(batchSize int) (*tensor.Tensor, error) {
	return tensor.Randn(tensor.Shape{batchSize, s.features}, s.rng), nil
}

// BatchNormAdaptation recomputes the running statistics of every
// nn.BatchNorm1d in a model.
//
// Run resets each layer's running statistics, switches it to training mode
// with cumulative averaging, pushes Params.Batches() batches from the source
// through the whole model and restores the layers' mode afterwards.
type BatchNormAdaptation struct {
	params Params
	source DataSource
}

// NewBatchNormAdaptation creates the routine.
func NewBatchNormAdaptation(params Params, source DataSource) (*BatchNormAdaptation, error) {
	if params.NumSamples <= 0 || params.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: num_samples=%d batch_size=%d", ErrInvalidParams, params.NumSamples, params.BatchSize)
	}
	if source == nil {
		return nil, fmt.Errorf("%w: nil data source", ErrInvalidParams)
	}
	return &BatchNormAdaptation{params: params, source: source}, nil
}

type bnState struct {
	bn         *nn.BatchNorm1d
	training   bool
	cumulative bool
}

// Run adapts the batch normalization layers of model.
func (a *BatchNormAdaptation) Run(model nn.Module) error {
	var states []bnState
	err := nn.Walk(model, func(scope string, m nn.Module) error {
		if m == nil {
			return fmt.Errorf("nil module at %s", scope)
		}
		if bn, ok := m.(*nn.BatchNorm1d); ok {
			states = append(states, bnState{bn: bn, training: bn.Training(), cumulative: bn.Cumulative()})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("adaptation: walk model: %w", err)
	}
	if len(states) == 0 {
		slog.Debug("adaptation: no batch norm layers, nothing to do")
		return nil
	}

	for _, s := range states {
		s.bn.ResetRunningStats()
		s.bn.SetTraining(true)
		s.bn.SetCumulative(true)
	}
	defer func() {
		for _, s := range states {
			s.bn.SetTraining(s.training)
			s.bn.SetCumulative(s.cumulative)
		}
	}()

	batches := a.params.Batches()
	for i := 0; i < batches; i++ {
		x, err := a.source.Next(a.params.BatchSize)
		if err != nil {
			return fmt.Errorf("adaptation batch %d/%d: %w", i+1, batches, err)
		}
		model.Forward(x)
	}

	slog.Debug("adaptation: batch norm statistics updated", "layers", len(states), "batches", batches)
	return nil
}
