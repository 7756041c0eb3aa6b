package sparsity

import (
	"slices"

	"github.com/born-ml/sparsity/internal/parallel"
)

// SelectThreshold returns the importance score below or at which weights are
// dropped to reach level over layers.
//
// The scores of every layer are pooled and sorted ascending, and the element
// at rank floor((N-1)*level) is returned. Passing all layers gives the Global
// threshold; passing one layer gives that layer's Local threshold. An empty
// list returns 0.
func SelectThreshold(level float64, imp Importance, layers []*ModuleInfo) float64 {
	return selectThreshold(level, imp, layers, parallel.DefaultConfig())
}

func selectThreshold(level float64, imp Importance, layers []*ModuleInfo, cfg parallel.Config) float64 {
	all := collectScores(imp, layers, cfg)
	if len(all) == 0 {
		return 0.0
	}
	slices.Sort(all)
	return all[int(float64(len(all)-1)*level)]
}

func collectScores(imp Importance, layers []*ModuleInfo, cfg parallel.Config) []float64 {
	n := 0
	for _, info := range layers {
		n += info.Weight().NumElements()
	}
	if n == 0 {
		return nil
	}

	all := make([]float64, 0, n)
	for _, info := range layers {
		all = append(all, imp.ScoreWith(info.Weight(), cfg)...)
	}
	return all
}
