// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 tensors that hold layer weights
// and sparsity masks.
//
// # Basic Usage
//
//	import "github.com/born-ml/sparsity/tensor"
//
//	w, err := tensor.FromSlice([]float32{-3, 1, 0, 5, -2, 4}, tensor.Shape{2, 3})
//	if err != nil {
//	    return err
//	}
//	mask := tensor.Ones(w.Shape())
//	effective := w.Mul(mask)
//
// Tensors are row-major and own their buffer. Data returns that buffer, so
// writes through it change the tensor.
package tensor
