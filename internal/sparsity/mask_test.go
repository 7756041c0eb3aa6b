package sparsity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/born-ml/sparsity/internal/tensor"
)

func TestCalcBinaryMask_StrictGreater(t *testing.T) {
	w, _ := tensor.FromSlice([]float32{-3, 1, 0, 5, -2, 4}, tensor.Shape{2, 3})

	mask := CalcBinaryMask(w, Abs, 2)

	if diff := cmp.Diff([]float32{1, 0, 0, 1, 0, 1}, mask.Data()); diff != "" {
		t.Errorf("mask mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, mask.Shape().Equal(w.Shape()))
}

func TestCalcBinaryMask_TiesAreDropped(t *testing.T) {
	w, _ := tensor.FromSlice([]float32{1, 1, 1, 2}, tensor.Shape{4})

	// Rank floor(3*0.25) = 0 selects 1; all three ties go.
	mask := CalcBinaryMask(w, Abs, 1)
	assert.Equal(t, []float32{0, 0, 0, 1}, mask.Data())
}

func TestBinaryMask_ApplyKeepsWeight(t *testing.T) {
	w, _ := tensor.FromSlice([]float32{-3, 1, 0, 5}, tensor.Shape{2, 2})
	m := NewBinaryMask(w.Shape())
	assert.Equal(t, []float32{1, 1, 1, 1}, m.Mask().Data())

	assert.True(t, m.Update(w, Abs, 1))
	out := m.Apply(w)

	assert.Equal(t, []float32{-3, 0, 0, 5}, out.Data())
	assert.Equal(t, []float32{-3, 1, 0, 5}, w.Data(), "weight must stay addressable and unchanged")
	assert.Equal(t, 2, m.Zeros())
}

func TestBinaryMask_FrozenSkipsUpdate(t *testing.T) {
	w, _ := tensor.FromSlice([]float32{-3, 1, 0, 5}, tensor.Shape{4})
	m := NewBinaryMask(w.Shape())
	m.Freeze()

	assert.True(t, m.Frozen())
	assert.False(t, m.Update(w, Abs, 4))
	assert.Equal(t, []float32{1, 1, 1, 1}, m.Mask().Data())
}

func TestBinaryMask_ShapeMismatchPanics(t *testing.T) {
	m := NewBinaryMask(tensor.Shape{2, 2})
	w := tensor.Zeros(tensor.Shape{4})

	assert.Panics(t, func() { m.Update(w, Abs, 0) })
}
