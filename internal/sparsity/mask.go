package sparsity

import (
	"fmt"

	"github.com/born-ml/sparsity/internal/parallel"
	"github.com/born-ml/sparsity/internal/tensor"
)

// BinaryMask is the per-layer mask operand.
//
// It holds a {0, 1} tensor shaped like the layer weight and a frozen latch.
// It is installed as the layer's nn.WeightPreOp so every forward pass sees
// weight * mask; the weight itself is never rewritten.
type BinaryMask struct {
	mask   *tensor.Tensor
	frozen bool
}

// NewBinaryMask creates an all-ones (keep everything) mask.
func NewBinaryMask(shape tensor.Shape) *BinaryMask {
	return &BinaryMask{mask: tensor.Ones(shape)}
}

// Mask returns the mask tensor.
func (m *BinaryMask) Mask() *tensor.Tensor {
	return m.mask
}

// Frozen reports whether the mask is latched.
func (m *BinaryMask) Frozen() bool {
	return m.frozen
}

// Freeze latches the mask. There is no way back.
func (m *BinaryMask) Freeze() {
	m.frozen = true
}

// Update recomputes the mask from weight for threshold and reports whether
// it did. A frozen mask is left as is.
func (m *BinaryMask) Update(weight *tensor.Tensor, imp Importance, threshold float64) bool {
	return m.update(weight, imp, threshold, parallel.DefaultConfig())
}

func (m *BinaryMask) update(weight *tensor.Tensor, imp Importance, threshold float64, cfg parallel.Config) bool {
	if m.frozen {
		return false
	}
	if !weight.Shape().Equal(m.mask.Shape()) {
		panic(fmt.Sprintf("BinaryMask.Update: weight shape %v does not match mask shape %v", weight.Shape(), m.mask.Shape()))
	}
	m.mask = calcBinaryMask(weight, imp, threshold, cfg)
	return true
}

// Apply returns weight * mask.
func (m *BinaryMask) Apply(weight *tensor.Tensor) *tensor.Tensor {
	return weight.Mul(m.mask)
}

// Zeros returns the number of masked-out elements.
func (m *BinaryMask) Zeros() int {
	return m.mask.CountZeros()
}

// CalcBinaryMask keeps the elements whose score is strictly greater than
// threshold. Elements scoring exactly threshold are dropped.
func CalcBinaryMask(weight *tensor.Tensor, imp Importance, threshold float64) *tensor.Tensor {
	return calcBinaryMask(weight, imp, threshold, parallel.DefaultConfig())
}

func calcBinaryMask(weight *tensor.Tensor, imp Importance, threshold float64, cfg parallel.Config) *tensor.Tensor {
	scores := imp.ScoreWith(weight, cfg)
	mask := tensor.Zeros(weight.Shape())
	data := mask.Data()
	for i, s := range scores {
		if s > threshold {
			data[i] = 1
		}
	}
	return mask
}
