// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsity/nn"
	"github.com/born-ml/sparsity/tensor"
)

// TestModuleInterface verifies that concrete types implement Module interface.
func TestModuleInterface(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name   string
		module nn.Module
		params int
	}{
		{
			name:   "Linear",
			module: nn.NewLinear(10, 5, rng),
			params: 2,
		},
		{
			name:   "BatchNorm1d",
			module: nn.NewBatchNorm1d(10, 1e-5, 0.1),
			params: 2,
		},
		{
			name: "Sequential",
			module: nn.NewSequential(
				nn.NewLinear(10, 5, rng),
				nn.NewReLU(),
			),
			params: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tensor.Randn(tensor.Shape{2, 10}, rng)
			out := tt.module.Forward(input)
			assert.Equal(t, 2, out.Shape()[0])
			assert.Len(t, tt.module.Parameters(), tt.params)
		})
	}
}

func TestWalkScopes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	model := nn.NewSequential(nn.NewLinear(4, 3, rng), nn.NewReLU(), nn.NewLinear(3, 2, rng))

	var weighted []string
	err := nn.Walk(model, func(scope string, m nn.Module) error {
		if _, ok := m.(nn.WeightedModule); ok {
			weighted = append(weighted, scope)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sequential/Linear[0]", "Sequential/Linear[2]"}, weighted)
}
