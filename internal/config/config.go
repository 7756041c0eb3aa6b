// Package config loads the magnitude sparsity algorithm configuration.
//
// Files are YAML; JSON files parse as well. Keys follow the algorithm
// section of a compression config:
//
//	algorithm: magnitude_sparsity
//	sparsity_init: 0.1
//	params:
//	  sparsity_level_setting_mode: global
//	  weight_importance: normed_abs
//	  schedule: polynomial
//	  sparsity_target: 0.5
//	  sparsity_target_epoch: 90
//	  sparsity_freeze_epoch: 100
//	ignored_scopes:
//	  - "{re}.*Linear\\[0\\]"
//	initializer:
//	  batchnorm_adaptation:
//	    num_bn_adaptation_samples: 2000
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/sparsity/internal/adaptation"
	"github.com/born-ml/sparsity/internal/schedule"
	"github.com/born-ml/sparsity/internal/sparsity"
)

// Algorithm is the only accepted value of the algorithm key.
const Algorithm = "magnitude_sparsity"

// Config is the algorithm section of a compression config.
type Config struct {
	Algorithm     string      `yaml:"algorithm"`
	SparsityInit  float64     `yaml:"sparsity_init"`
	Params        Params      `yaml:"params"`
	IgnoredScopes []string    `yaml:"ignored_scopes"`
	Initializer   Initializer `yaml:"initializer"`
}

// Params holds the algorithm parameters.
type Params struct {
	Mode             string `yaml:"sparsity_level_setting_mode"`
	WeightImportance string `yaml:"weight_importance"`
	Schedule         string `yaml:"schedule"`

	SparsityTarget      float64 `yaml:"sparsity_target"`
	SparsityTargetEpoch int     `yaml:"sparsity_target_epoch"`
	SparsityFreezeEpoch int     `yaml:"sparsity_freeze_epoch"`

	Power                  float64 `yaml:"power"`
	Concave                bool    `yaml:"concave"`
	UpdatePerOptimizerStep bool    `yaml:"update_per_optimizer_step"`
	StepsPerEpoch          int     `yaml:"steps_per_epoch"`

	MultistepSteps          []int     `yaml:"multistep_steps"`
	MultistepSparsityLevels []float64 `yaml:"multistep_sparsity_levels"`
}

// Initializer holds the initialization steps run by the controller.
type Initializer struct {
	BatchNormAdaptation BatchNormAdaptation `yaml:"batchnorm_adaptation"`
}

// BatchNormAdaptation configures batch norm statistics adaptation.
type BatchNormAdaptation struct {
	NumSamples int `yaml:"num_bn_adaptation_samples"`
	BatchSize  int `yaml:"batch_size"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	sp := schedule.DefaultParams()
	ad := adaptation.DefaultParams()
	return Config{
		Algorithm: Algorithm,
		Params: Params{
			Mode:                    sparsity.Global.String(),
			WeightImportance:        sparsity.DefaultImportance.String(),
			Schedule:                schedule.DefaultKind.String(),
			SparsityTarget:          sp.SparsityTarget,
			SparsityTargetEpoch:     sp.SparsityTargetEpoch,
			SparsityFreezeEpoch:     sp.SparsityFreezeEpoch,
			Power:                   sp.Power,
			Concave:                 sp.Concave,
			MultistepSteps:          sp.MultistepSteps,
			MultistepSparsityLevels: sp.MultistepSparsityLevels,
		},
		Initializer: Initializer{
			BatchNormAdaptation: BatchNormAdaptation{
				NumSamples: ad.NumSamples,
				BatchSize:  ad.BatchSize,
			},
		},
	}
}

// Parse decodes data over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks keys and ranges. Errors are *sparsity.ConfigurationError
// or, for sparsity_init, *sparsity.OutOfRangeError.
func (c Config) Validate() error {
	if c.Algorithm != Algorithm {
		return &sparsity.ConfigurationError{Key: "algorithm", Value: c.Algorithm}
	}
	if !(c.SparsityInit >= 0 && c.SparsityInit < 1) {
		return &sparsity.OutOfRangeError{Level: c.SparsityInit}
	}

	mode, err := sparsity.ParseMode(c.Params.Mode)
	if err != nil {
		return err
	}
	if _, err := sparsity.ParseImportance(c.Params.WeightImportance); err != nil {
		return err
	}
	if mode == sparsity.Global {
		if _, err := schedule.ParseKind(c.Params.Schedule); err != nil {
			return &sparsity.ConfigurationError{Key: "schedule", Value: c.Params.Schedule, Err: err}
		}
	}

	ad := c.Initializer.BatchNormAdaptation
	if ad.NumSamples <= 0 || ad.BatchSize <= 0 {
		return &sparsity.ConfigurationError{
			Key:   "initializer.batchnorm_adaptation",
			Value: fmt.Sprintf("num_bn_adaptation_samples=%d batch_size=%d", ad.NumSamples, ad.BatchSize),
			Err:   adaptation.ErrInvalidParams,
		}
	}
	return nil
}

// ScheduleParams returns the scheduler parameters.
func (c Config) ScheduleParams() schedule.Params {
	return schedule.Params{
		SparsityInit:            c.SparsityInit,
		SparsityTarget:          c.Params.SparsityTarget,
		SparsityTargetEpoch:     c.Params.SparsityTargetEpoch,
		SparsityFreezeEpoch:     c.Params.SparsityFreezeEpoch,
		Power:                   c.Params.Power,
		Concave:                 c.Params.Concave,
		UpdatePerOptimizerStep:  c.Params.UpdatePerOptimizerStep,
		StepsPerEpoch:           c.Params.StepsPerEpoch,
		MultistepSteps:          c.Params.MultistepSteps,
		MultistepSparsityLevels: c.Params.MultistepSparsityLevels,
	}
}

// AdaptationParams returns the batch norm adaptation parameters.
func (c Config) AdaptationParams() adaptation.Params {
	return adaptation.Params{
		NumSamples: c.Initializer.BatchNormAdaptation.NumSamples,
		BatchSize:  c.Initializer.BatchNormAdaptation.BatchSize,
	}
}

// SparsityConfig maps c to a controller configuration. The adaptation
// factory is left for the caller, which owns the sample data.
func (c Config) SparsityConfig() sparsity.Config {
	return sparsity.Config{
		SparsityInit:     c.SparsityInit,
		Mode:             c.Params.Mode,
		WeightImportance: c.Params.WeightImportance,
		Schedule:         c.Params.Schedule,
		ScheduleParams:   c.ScheduleParams(),
		IgnoredScopes:    c.IgnoredScopes,
		Adaptation:       c.AdaptationParams(),
	}
}
