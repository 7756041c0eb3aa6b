package schedule

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Controller that records what the scheduler pushes.
type recorder struct {
	levels  []float64
	freezes int
	err     error
}

func (r *recorder) SetSparsityLevel(level float64) error {
	if r.err != nil {
		return r.err
	}
	r.levels = append(r.levels, level)
	return nil
}

func (r *recorder) Freeze() {
	r.freezes++
}

func stepEpochs(t *testing.T, s Scheduler, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.EpochStep())
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		key  string
		want Kind
	}{
		{"", Polynomial},
		{"polynomial", Polynomial},
		{"exponential", Exponential},
		{"multistep", MultiStep},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}

	_, err := ParseKind("cosine")
	assert.ErrorIs(t, err, ErrUnknownSchedule)
}

func TestNew_RejectsInvalidParams(t *testing.T) {
	params := DefaultParams()
	params.SparsityTarget = 1

	_, err := New(Polynomial, &recorder{}, params)
	assert.ErrorIs(t, err, ErrInvalidParams)

	params = DefaultParams()
	params.SparsityInit = -0.1
	_, err = New(Exponential, &recorder{}, params)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestPolynomial_Concave(t *testing.T) {
	rec := &recorder{}
	params := DefaultParams()
	params.SparsityTargetEpoch = 10
	params.SparsityFreezeEpoch = 20
	params.Power = 1

	s, err := New(Polynomial, rec, params)
	require.NoError(t, err)

	assert.Equal(t, -1, s.CurrentEpoch())
	assert.Equal(t, 0.0, s.CurrentSparsityLevel())
	assert.Equal(t, 0.5, s.TargetLevel())

	stepEpochs(t, s, 6)
	assert.Equal(t, 5, s.CurrentEpoch())
	assert.InDelta(t, 0.25, s.CurrentSparsityLevel(), 1e-12)
	require.Len(t, rec.levels, 6)
	assert.Equal(t, 0.0, rec.levels[0])
	assert.InDelta(t, 0.25, rec.levels[5], 1e-12)

	stepEpochs(t, s, 10)
	assert.InDelta(t, 0.5, s.CurrentSparsityLevel(), 1e-12, "progress is clamped at the target epoch")
	assert.Zero(t, rec.freezes)
}

func TestPolynomial_Convex(t *testing.T) {
	params := DefaultParams()
	params.SparsityTargetEpoch = 10
	params.Power = 2
	params.Concave = false

	s, err := New(Polynomial, &recorder{}, params)
	require.NoError(t, err)

	stepEpochs(t, s, 6)
	assert.InDelta(t, 0.375, s.CurrentSparsityLevel(), 1e-12)
}

func TestPolynomial_ZeroTargetEpoch(t *testing.T) {
	params := DefaultParams()
	params.SparsityTargetEpoch = 0

	s, err := New(Polynomial, &recorder{}, params)
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.CurrentSparsityLevel())
}

func TestPolynomial_PerStepLearnsStepsPerEpoch(t *testing.T) {
	rec := &recorder{}
	params := DefaultParams()
	params.SparsityTargetEpoch = 2
	params.Power = 1
	params.UpdatePerOptimizerStep = true

	s, err := New(Polynomial, rec, params)
	require.NoError(t, err)

	require.NoError(t, s.EpochStep()) // epoch 0
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Step()) // skipped, steps per epoch unknown
	}
	require.Len(t, rec.levels, 1)

	require.NoError(t, s.EpochStep()) // epoch 1, learns 4 steps per epoch
	assert.Equal(t, 4, s.(*PolynomialScheduler).StepsPerEpoch())

	require.NoError(t, s.Step())
	require.NoError(t, s.Step())

	want := []float64{0, 0.25, 0.25, 0.3125}
	require.Len(t, rec.levels, len(want))
	for i := range want {
		assert.InDelta(t, want[i], rec.levels[i], 1e-12, "level %d", i)
	}
}

func TestPolynomial_StepWithoutPerStepUpdates(t *testing.T) {
	rec := &recorder{}
	s, err := New(Polynomial, rec, DefaultParams())
	require.NoError(t, err)

	require.NoError(t, s.Step())
	assert.Empty(t, rec.levels)
}

func TestFreezeEpoch(t *testing.T) {
	rec := &recorder{}
	params := DefaultParams()
	params.SparsityTargetEpoch = 2
	params.SparsityFreezeEpoch = 2

	s, err := New(Polynomial, rec, params)
	require.NoError(t, err)

	stepEpochs(t, s, 2) // epochs 0, 1
	assert.Zero(t, rec.freezes)

	stepEpochs(t, s, 1) // epoch 2
	assert.Equal(t, 1, rec.freezes)
	assert.Len(t, rec.levels, 3, "the level is still pushed on the freeze epoch")
}

func TestEpochStep_PropagatesControllerError(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{err: boom}
	params := DefaultParams()
	params.SparsityFreezeEpoch = 0

	s, err := New(Polynomial, rec, params)
	require.NoError(t, err)

	assert.ErrorIs(t, s.EpochStep(), boom)
	assert.Zero(t, rec.freezes, "no freeze after a failed update")
}

func TestExponential(t *testing.T) {
	params := DefaultParams()
	params.SparsityTargetEpoch = 10

	s, err := New(Exponential, &recorder{}, params)
	require.NoError(t, err)

	stepEpochs(t, s, 6) // epoch 5
	assert.InDelta(t, 1-math.Sqrt(0.5), s.CurrentSparsityLevel(), 1e-12)

	stepEpochs(t, s, 5) // epoch 10
	assert.InDelta(t, 0.5, s.CurrentSparsityLevel(), 1e-12)

	stepEpochs(t, s, 10) // epoch 20
	assert.Equal(t, 0.5, s.CurrentSparsityLevel(), "level is capped at the target")
}

func TestMultiStep(t *testing.T) {
	params := DefaultParams()
	params.MultistepSteps = []int{2, 4}
	params.MultistepSparsityLevels = []float64{0.1, 0.3, 0.6}

	rec := &recorder{}
	s, err := New(MultiStep, rec, params)
	require.NoError(t, err)

	assert.Equal(t, 0.6, s.TargetLevel())
	assert.Equal(t, 0.1, s.CurrentSparsityLevel())

	stepEpochs(t, s, 5) // epochs 0..4
	assert.Equal(t, []float64{0.1, 0.1, 0.3, 0.3, 0.6}, rec.levels)
}

func TestMultiStep_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		steps  []int
		levels []float64
	}{
		{"level count", []int{2, 4}, []float64{0.1, 0.3}},
		{"unsorted steps", []int{4, 2}, []float64{0.1, 0.3, 0.6}},
		{"level out of range", []int{2}, []float64{0.1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams()
			params.MultistepSteps = tt.steps
			params.MultistepSparsityLevels = tt.levels

			_, err := New(MultiStep, &recorder{}, params)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
