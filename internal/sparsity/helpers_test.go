package sparsity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/schedule"
)

// linearWith creates an out x in Linear layer with the given weights.
func linearWith(t *testing.T, out, in int, weights ...float32) *nn.Linear {
	t.Helper()
	require.Len(t, weights, out*in)
	l := nn.NewLinear(in, out, rand.New(rand.NewSource(1)))
	copy(l.Weight().Tensor().Data(), weights)
	return l
}

// randomLinear creates a Linear layer with weights scaled by scale.
func randomLinear(rng *rand.Rand, out, in int, scale float32) *nn.Linear {
	l := nn.NewLinear(in, out, rng)
	data := l.Weight().Tensor().Data()
	for i := range data {
		data[i] = float32(rng.NormFloat64()) * scale
	}
	return l
}

// snapshot copies every mask of c.
func snapshot(c *Controller) [][]float32 {
	masks := make([][]float32, len(c.Layers()))
	for i, info := range c.Layers() {
		masks[i] = append([]float32(nil), info.Operand.Mask().Data()...)
	}
	return masks
}

// globalAbs is a Global-mode config using plain absolute values.
func globalAbs(init float64) Config {
	return Config{
		SparsityInit:     init,
		WeightImportance: "abs",
		ScheduleParams:   schedule.DefaultParams(),
	}
}

// localAbs is a Local-mode config using plain absolute values.
func localAbs(init float64) Config {
	return Config{
		SparsityInit:     init,
		Mode:             "local",
		WeightImportance: "abs",
	}
}
