package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparsity/internal/schedule"
	"github.com/born-ml/sparsity/internal/sparsity"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "global", cfg.Params.Mode)
	assert.Equal(t, "normed_abs", cfg.Params.WeightImportance)
	assert.Equal(t, "polynomial", cfg.Params.Schedule)
	assert.Equal(t, schedule.DefaultParams(), cfg.ScheduleParams())
	assert.Equal(t, 2000, cfg.AdaptationParams().NumSamples)
}

func TestParse_YAML(t *testing.T) {
	cfg, err := Parse([]byte(`
algorithm: magnitude_sparsity
sparsity_init: 0.1
params:
  sparsity_level_setting_mode: local
  weight_importance: abs
  sparsity_target: 0.7
ignored_scopes:
  - "{re}.*Linear\\[0\\]"
initializer:
  batchnorm_adaptation:
    num_bn_adaptation_samples: 64
`))
	require.NoError(t, err)

	assert.Equal(t, 0.1, cfg.SparsityInit)
	assert.Equal(t, "local", cfg.Params.Mode)
	assert.Equal(t, "abs", cfg.Params.WeightImportance)
	assert.Equal(t, 0.7, cfg.Params.SparsityTarget)
	assert.Equal(t, []string{`{re}.*Linear\[0\]`}, cfg.IgnoredScopes)

	// Keys left out keep their defaults.
	assert.Equal(t, 90, cfg.Params.SparsityTargetEpoch)
	assert.True(t, cfg.Params.Concave)
	assert.Equal(t, 64, cfg.Initializer.BatchNormAdaptation.NumSamples)
	assert.Equal(t, 32, cfg.Initializer.BatchNormAdaptation.BatchSize)
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"algorithm": "magnitude_sparsity",
		"sparsity_init": 0.05,
		"params": {"schedule": "multistep", "multistep_steps": [2, 4], "multistep_sparsity_levels": [0.1, 0.3, 0.5]}
	}`))
	require.NoError(t, err)

	sp := cfg.ScheduleParams()
	assert.Equal(t, 0.05, sp.SparsityInit)
	assert.Equal(t, []int{2, 4}, sp.MultistepSteps)
	assert.Equal(t, []float64{0.1, 0.3, 0.5}, sp.MultistepSparsityLevels)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"algorithm", "algorithm: rb_sparsity", sparsity.ErrConfiguration},
		{"init", "sparsity_init: 1.0", sparsity.ErrOutOfRange},
		{"mode", "params: {sparsity_level_setting_mode: per_layer}", sparsity.ErrConfiguration},
		{"importance", "params: {weight_importance: l2}", sparsity.ErrConfiguration},
		{"schedule", "params: {schedule: cosine}", schedule.ErrUnknownSchedule},
		{"adaptation", "initializer: {batchnorm_adaptation: {batch_size: 0}}", sparsity.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte("params: [1, 2"))
	assert.Error(t, err)
}

func TestParse_LocalIgnoresSchedule(t *testing.T) {
	_, err := Parse([]byte("params: {sparsity_level_setting_mode: local, schedule: cosine}"))
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparsity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sparsity_init: 0.2\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.SparsityInit)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSparsityConfig(t *testing.T) {
	cfg := Default()
	cfg.SparsityInit = 0.3
	cfg.IgnoredScopes = []string{"MLP/Linear[0]"}

	sc := cfg.SparsityConfig()
	assert.Equal(t, 0.3, sc.SparsityInit)
	assert.Equal(t, 0.3, sc.ScheduleParams.SparsityInit)
	assert.Equal(t, "global", sc.Mode)
	assert.Equal(t, []string{"MLP/Linear[0]"}, sc.IgnoredScopes)
	assert.Equal(t, 32, sc.Adaptation.BatchSize)
	assert.Nil(t, sc.AdaptationFactory)
}
