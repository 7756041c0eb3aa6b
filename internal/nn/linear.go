package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/sparsity/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// When a WeightPreOp is installed, Forward uses preOp.Apply(W) in place of W.
// This is how a sparsity mask gates the weight without rewriting it.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	layer := nn.NewLinear(784, 128, rng)
//	output := layer.Forward(input) // [32, 784] -> [32, 128]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
	preOp       WeightPreOp
}

// NewLinear creates a new Linear layer.
//
// Weights are initialized using Xavier/Glorot uniform distribution.
// Biases are initialized to zeros.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, rng))
	bias := NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures}))

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	batch := inputShape[0]
	x := input.Data()
	w := l.EffectiveWeight().Data()
	b := l.bias.Tensor().Data()

	out := tensor.Zeros(tensor.Shape{batch, l.outFeatures})
	y := out.Data()
	for n := 0; n < batch; n++ {
		row := x[n*l.inFeatures : (n+1)*l.inFeatures]
		for o := 0; o < l.outFeatures; o++ {
			wRow := w[o*l.inFeatures : (o+1)*l.inFeatures]
			sum := b[o]
			for i, v := range row {
				sum += v * wRow[i]
			}
			y[n*l.outFeatures+o] = sum
		}
	}
	return out
}

// EffectiveWeight returns the weight as Forward sees it, after the pre-op.
func (l *Linear) EffectiveWeight() *tensor.Tensor {
	if l.preOp == nil {
		return l.weight.Tensor()
	}
	return l.preOp.Apply(l.weight.Tensor())
}

// Parameters returns the weight and bias parameters.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// SetWeightPreOp installs op in front of the weight.
func (l *Linear) SetWeightPreOp(op WeightPreOp) {
	l.preOp = op
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
