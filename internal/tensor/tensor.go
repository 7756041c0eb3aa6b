// Package tensor provides the dense float32 tensor used for layer weights,
// sparsity masks and activations.
//
// A Tensor owns a flat row-major buffer and its Shape. Layers hold their
// weights as Tensors; the sparsity engine reads them to compute importance
// scores and keeps its binary masks in Tensors of the same shape.
package tensor

import "fmt"

// Tensor is a dense row-major float32 tensor.
//
// Example:
//
//	w := tensor.Zeros(tensor.Shape{3, 4})
//	w.Set(1.5, 1, 2)
//	v := w.At(1, 2) // 1.5
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor, validating the shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}, nil
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	t, err := New(shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)

	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the tensor's flat buffer.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{
		shape: t.shape.Clone(),
		data:  data,
	}
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float32 {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float32, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}

	offset := 0
	strides := t.shape.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// Mul returns the element-wise product of t and other.
// Panics if the shapes differ.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("Mul: shape mismatch %v vs %v", t.shape, other.shape))
	}

	out := &Tensor{
		shape: t.shape.Clone(),
		data:  make([]float32, len(t.data)),
	}
	for i, v := range t.data {
		out.data[i] = v * other.data[i]
	}
	return out
}

// CountZeros returns the number of elements equal to zero.
func (t *Tensor) CountZeros() int {
	n := 0
	for _, v := range t.data {
		if v == 0 {
			n++
		}
	}
	return n
}

// String returns a short description of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}
