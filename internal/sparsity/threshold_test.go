package sparsity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsity/internal/nn"
)

func TestSelectThreshold_EmptyLayers(t *testing.T) {
	for _, level := range []float64{0, 0.25, 0.5, 0.999} {
		assert.Equal(t, 0.0, SelectThreshold(level, NormedAbs, nil), "level %v", level)
		assert.Equal(t, 0.0, SelectThreshold(level, Abs, []*ModuleInfo{}), "level %v", level)
	}
}

func TestSelectThreshold_SingleLayer(t *testing.T) {
	layers, err := Build(linearWith(t, 2, 3, -3, 1, 0, 5, -2, 4), nil)
	require.NoError(t, err)

	// Sorted scores [0 1 2 3 4 5], rank floor(5*0.5) = 2.
	assert.Equal(t, 2.0, SelectThreshold(0.5, Abs, layers))
	assert.InDelta(t, 0.4, SelectThreshold(0.5, NormedAbs, layers), 1e-12)

	// Rank is floored, not interpolated: floor(5*0.59) = 2, floor(5*0.61) = 3.
	assert.Equal(t, 2.0, SelectThreshold(0.59, Abs, layers))
	assert.Equal(t, 3.0, SelectThreshold(0.61, Abs, layers))
	assert.Equal(t, 0.0, SelectThreshold(0, Abs, layers))
}

func TestSelectThreshold_Pooled(t *testing.T) {
	a := linearWith(t, 1, 2, 1, 5)
	b := linearWith(t, 1, 2, 2, 4)
	layers, err := Build(nn.NewSequential(a, b), nil)
	require.NoError(t, err)

	// Pooled [1 2 4 5], rank floor(3*0.25) = 0.
	assert.Equal(t, 1.0, SelectThreshold(0.25, Abs, layers))
	// Each layer alone.
	assert.Equal(t, 1.0, SelectThreshold(0.5, Abs, layers[:1]))
	assert.Equal(t, 2.0, SelectThreshold(0.5, Abs, layers[1:]))
}

func TestSelectThreshold_RankProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	model := nn.NewSequential(randomLinear(rng, 7, 5, 1), randomLinear(rng, 3, 11, 0.1))
	layers, err := Build(model, nil)
	require.NoError(t, err)

	var pooled []float64
	for _, info := range layers {
		pooled = append(pooled, Abs.Score(info.Weight())...)
	}
	n := float64(len(pooled))

	for _, level := range []float64{0, 0.1, 0.25, 0.33, 0.5, 0.77, 0.9, 0.999} {
		threshold := SelectThreshold(level, Abs, layers)

		kept := 0
		for _, s := range pooled {
			if s > threshold {
				kept++
			}
		}
		assert.InDelta(t, math.Round((1-level)*n), float64(kept), 1, "level %v", level)
	}
}

func TestSelectThreshold_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	layers, err := Build(nn.NewSequential(randomLinear(rng, 16, 16, 1), randomLinear(rng, 8, 16, 1)), nil)
	require.NoError(t, err)

	first := SelectThreshold(0.37, NormedAbs, layers)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, SelectThreshold(0.37, NormedAbs, layers))
	}
}
