package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/sparsity/internal/tensor"
)

// BatchNorm1d applies Batch Normalization over a [batch, features] input.
//
// Formula: Y = gamma * (X - mean) / sqrt(var + eps) + beta
//
// In training mode mean and var come from the current batch and are folded
// into the running statistics. In evaluation mode the running statistics are
// used. After a sparsity mask changes, the running statistics no longer match
// the activations the masked layers produce; adaptation.BatchNormAdaptation
// re-estimates them.
type BatchNorm1d struct {
	Gamma   *Parameter // learnable scale [features]
	Beta    *Parameter // learnable shift [features]
	Epsilon float32

	features    int
	runningMean []float32
	runningVar  []float32
	momentum    float32
	cumulative  bool // average every batch equally instead of momentum
	tracked     int  // batches folded into the running statistics
	training    bool
}

// NewBatchNorm1d creates a BatchNorm1d layer in evaluation mode.
//
// Gamma starts at ones, beta at zeros, running mean at zeros and running
// variance at ones.
func NewBatchNorm1d(features int, epsilon, momentum float32) *BatchNorm1d {
	bn := &BatchNorm1d{
		Gamma:    NewParameter("gamma", tensor.Ones(tensor.Shape{features})),
		Beta:     NewParameter("beta", tensor.Zeros(tensor.Shape{features})),
		Epsilon:  epsilon,
		features: features,
		momentum: momentum,
	}
	bn.ResetRunningStats()
	return bn
}

// Forward normalizes the input feature-wise.
func (bn *BatchNorm1d) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 || shape[1] != bn.features {
		panic(fmt.Sprintf("BatchNorm1d.Forward: expected input [batch, %d], got shape %v", bn.features, shape))
	}

	batch := shape[0]
	x := input.Data()

	mean := bn.runningMean
	variance := bn.runningVar
	if bn.training {
		mean, variance = batchMoments(x, batch, bn.features)
		bn.track(mean, variance, batch)
	}

	gamma := bn.Gamma.Tensor().Data()
	beta := bn.Beta.Tensor().Data()

	out := tensor.Zeros(shape)
	y := out.Data()
	for n := 0; n < batch; n++ {
		for f := 0; f < bn.features; f++ {
			i := n*bn.features + f
			inv := float32(1.0 / math.Sqrt(float64(variance[f]+bn.Epsilon)))
			y[i] = gamma[f]*(x[i]-mean[f])*inv + beta[f]
		}
	}
	return out
}

// batchMoments returns per-feature mean and biased variance.
func batchMoments(x []float32, batch, features int) (mean, variance []float32) {
	mean = make([]float32, features)
	variance = make([]float32, features)
	for n := 0; n < batch; n++ {
		for f := 0; f < features; f++ {
			mean[f] += x[n*features+f]
		}
	}
	for f := range mean {
		mean[f] /= float32(batch)
	}
	for n := 0; n < batch; n++ {
		for f := 0; f < features; f++ {
			d := x[n*features+f] - mean[f]
			variance[f] += d * d
		}
	}
	for f := range variance {
		variance[f] /= float32(batch)
	}
	return mean, variance
}

func (bn *BatchNorm1d) track(mean, variance []float32, batch int) {
	bn.tracked++

	factor := bn.momentum
	if bn.cumulative {
		factor = 1 / float32(bn.tracked)
	}

	// Running variance is unbiased.
	correction := float32(1)
	if batch > 1 {
		correction = float32(batch) / float32(batch-1)
	}
	for f := range mean {
		bn.runningMean[f] = (1-factor)*bn.runningMean[f] + factor*mean[f]
		bn.runningVar[f] = (1-factor)*bn.runningVar[f] + factor*variance[f]*correction
	}
}

// Parameters returns gamma and beta.
func (bn *BatchNorm1d) Parameters() []*Parameter {
	return []*Parameter{bn.Gamma, bn.Beta}
}

// ResetRunningStats sets running mean to 0, running variance to 1 and
// forgets every tracked batch.
func (bn *BatchNorm1d) ResetRunningStats() {
	bn.runningMean = make([]float32, bn.features)
	bn.runningVar = make([]float32, bn.features)
	for i := range bn.runningVar {
		bn.runningVar[i] = 1
	}
	bn.tracked = 0
}

// RunningMean returns a copy of the running mean.
func (bn *BatchNorm1d) RunningMean() []float32 {
	return append([]float32(nil), bn.runningMean...)
}

// RunningVar returns a copy of the running variance.
func (bn *BatchNorm1d) RunningVar() []float32 {
	return append([]float32(nil), bn.runningVar...)
}

// SetTraining switches between batch statistics (true) and running
// statistics (false).
func (bn *BatchNorm1d) SetTraining(training bool) {
	bn.training = training
}

// Training reports whether the layer is in training mode.
func (bn *BatchNorm1d) Training() bool {
	return bn.training
}

// SetCumulative makes the running statistics an equal-weight average over
// all tracked batches instead of an exponential moving average.
func (bn *BatchNorm1d) SetCumulative(cumulative bool) {
	bn.cumulative = cumulative
}

// Cumulative reports whether cumulative averaging is on.
func (bn *BatchNorm1d) Cumulative() bool {
	return bn.cumulative
}

// Tracked returns the number of batches folded into the running statistics
// since the last reset.
func (bn *BatchNorm1d) Tracked() int {
	return bn.tracked
}
