// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsity/tensor"
)

func TestFacade(t *testing.T) {
	w, err := tensor.FromSlice([]float32{-3, 1, 0, 5}, tensor.Shape{2, 2})
	require.NoError(t, err)

	mask := tensor.Ones(w.Shape())
	mask.Set(0, 0, 1)

	assert.Equal(t, []float32{-3, 0, 0, 5}, w.Mul(mask).Data())
	assert.Equal(t, 4, tensor.Zeros(tensor.Shape{4}).CountZeros())
	assert.Equal(t, float32(2), tensor.Full(tensor.Shape{1}, 2).At(0))

	_, err = tensor.New(tensor.Shape{0})
	assert.Error(t, err)
}
