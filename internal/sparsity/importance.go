package sparsity

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/sparsity/internal/parallel"
	"github.com/born-ml/sparsity/internal/tensor"
)

// Importance selects the function that turns a weight into per-element
// importance scores. Scores are non-negative, deterministic and unchanged by
// flipping the sign of the whole weight.
type Importance int

// Supported importance functions.
const (
	// NormedAbs is |w| / max|w|, or all zeros when the weight is all zeros.
	NormedAbs Importance = iota
	// Abs is |w|.
	Abs
)

// DefaultImportance is used when no importance key is configured.
const DefaultImportance = NormedAbs

var importanceKeys = map[string]Importance{
	"normed_abs": NormedAbs,
	"abs":        Abs,
}

// ParseImportance resolves a configuration key to an Importance.
// An empty key selects DefaultImportance.
func ParseImportance(key string) (Importance, error) {
	if key == "" {
		return DefaultImportance, nil
	}
	imp, ok := importanceKeys[key]
	if !ok {
		return 0, &ConfigurationError{Key: "weight_importance", Value: key}
	}
	return imp, nil
}

// String returns the configuration key of the importance function.
func (imp Importance) String() string {
	switch imp {
	case NormedAbs:
		return "normed_abs"
	case Abs:
		return "abs"
	default:
		return "unknown"
	}
}

// ScoreParallel returns the fan-out used to score weights with n workers.
// n <= 0 selects one worker per CPU and n == 1 scores sequentially.
func ScoreParallel(n int) parallel.Config {
	switch {
	case n <= 0:
		return parallel.DefaultConfig()
	case n == 1:
		return parallel.Sequential()
	default:
		cfg := parallel.DefaultConfig()
		cfg.Enabled = true
		cfg.NumWorkers = n
		return cfg
	}
}

// Score returns the flat importance scores of weight.
func (imp Importance) Score(weight *tensor.Tensor) []float64 {
	return imp.ScoreWith(weight, parallel.DefaultConfig())
}

// ScoreWith is Score with an explicit fan-out.
func (imp Importance) ScoreWith(weight *tensor.Tensor, cfg parallel.Config) []float64 {
	w := weight.Data()
	scores := make([]float64, len(w))
	parallel.ForRange(len(w), func(start, end int) {
		for i := start; i < end; i++ {
			scores[i] = math.Abs(float64(w[i]))
		}
	}, cfg)

	if imp == NormedAbs && len(scores) > 0 {
		if m := floats.Max(scores); m > 0 {
			floats.Scale(1/m, scores)
		}
	}
	return scores
}
