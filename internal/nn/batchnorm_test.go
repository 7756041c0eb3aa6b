package nn

import (
	"testing"

	"github.com/born-ml/sparsity/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchNorm1d_TrainingUsesBatchStatistics(t *testing.T) {
	bn := NewBatchNorm1d(2, 1e-5, 0.1)
	bn.SetTraining(true)

	input, err := tensor.FromSlice([]float32{1, 2, 3, 6}, tensor.Shape{2, 2})
	require.NoError(t, err)

	output := bn.Forward(input)

	// mean = [2, 4], biased var = [1, 4]
	want := []float32{-1, -1, 1, 1}
	for i, w := range want {
		assert.InDelta(t, w, output.Data()[i], 1e-4)
	}

	// Momentum update with unbiased variance [2, 8].
	assert.InDeltaSlice(t, []float32{0.2, 0.4}, bn.RunningMean(), 1e-6)
	assert.InDeltaSlice(t, []float32{1.1, 1.7}, bn.RunningVar(), 1e-6)
	assert.Equal(t, 1, bn.Tracked())
}

func TestBatchNorm1d_CumulativeAverage(t *testing.T) {
	bn := NewBatchNorm1d(1, 1e-5, 0.1)
	bn.SetTraining(true)
	bn.SetCumulative(true)

	a, _ := tensor.FromSlice([]float32{1, 3}, tensor.Shape{2, 1})
	b, _ := tensor.FromSlice([]float32{5, 7}, tensor.Shape{2, 1})
	bn.Forward(a)
	bn.Forward(b)

	// Batch means 2 and 6 weigh equally.
	assert.InDeltaSlice(t, []float32{4}, bn.RunningMean(), 1e-6)
	// Unbiased variances are 2 and 2.
	assert.InDeltaSlice(t, []float32{2}, bn.RunningVar(), 1e-6)
	assert.Equal(t, 2, bn.Tracked())
}

func TestBatchNorm1d_EvalUsesRunningStatistics(t *testing.T) {
	bn := NewBatchNorm1d(1, 0, 0.1)
	bn.runningMean[0] = 1
	bn.runningVar[0] = 4

	input, _ := tensor.FromSlice([]float32{5}, tensor.Shape{1, 1})
	output := bn.Forward(input)

	assert.InDelta(t, float32(2), output.Data()[0], 1e-6)
	assert.Equal(t, 0, bn.Tracked(), "eval mode must not track batches")
}

func TestBatchNorm1d_ResetRunningStats(t *testing.T) {
	bn := NewBatchNorm1d(2, 1e-5, 0.5)
	bn.SetTraining(true)
	input, _ := tensor.FromSlice([]float32{1, 2, 3, 6}, tensor.Shape{2, 2})
	bn.Forward(input)

	bn.ResetRunningStats()

	assert.Equal(t, []float32{0, 0}, bn.RunningMean())
	assert.Equal(t, []float32{1, 1}, bn.RunningVar())
	assert.Zero(t, bn.Tracked())
}
