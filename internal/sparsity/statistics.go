package sparsity

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/sparsity/internal/tensor"
)

// LayerSummary describes one sparsified layer.
type LayerSummary struct {
	Name             string
	WeightShape      tensor.Shape
	NumElements      int
	SparsityLevel    float64 // Masked-out fraction of this layer
	WeightPercentage float64 // Share of all sparsified weights, in percent
}

// ModelStatistics summarizes sparsity over the whole model.
type ModelStatistics struct {
	SparsityLevel          float64 // Masked-out fraction of all parameters
	SparsityLevelForLayers float64 // Masked-out fraction of sparsified weights
	NumParameters          int
	NumSparsified          int
	Layers                 []LayerSummary
}

// LayerThreshold is the importance threshold reported for a layer.
type LayerThreshold struct {
	Name      string
	Threshold float64
}

// MagnitudeStatistics is the report of a magnitude sparsity controller.
type MagnitudeStatistics struct {
	Model      ModelStatistics
	Thresholds []LayerThreshold
}

// Statistics reports the achieved sparsity and, per layer, the threshold
// that would reproduce it.
//
// Thresholds are recomputed from the current weights and the current mask
// sparsity. If the weights changed since the masks were last set, they can
// differ from the thresholds actually used. Statistics has no side effects.
func (c *Controller) Statistics() MagnitudeStatistics {
	thresholds := make([]LayerThreshold, 0, len(c.layers))

	var global float64
	if c.mode == Global {
		global = c.threshold(c.SparsityRate(), c.layers...)
	}
	for _, info := range c.layers {
		threshold := global
		if c.mode == Local {
			threshold = c.threshold(c.SparsityRate(info), info)
		}
		thresholds = append(thresholds, LayerThreshold{Name: info.Name, Threshold: threshold})
	}

	return MagnitudeStatistics{
		Model:      c.modelStatistics(),
		Thresholds: thresholds,
	}
}

func (c *Controller) modelStatistics() ModelStatistics {
	counts := make([]float64, len(c.layers))
	zeros := 0
	for i, info := range c.layers {
		counts[i] = float64(info.Weight().NumElements())
		zeros += info.Operand.Zeros()
	}
	sparsified := floats.Sum(counts)

	total := 0
	for _, p := range c.model.Parameters() {
		total += p.NumElements()
	}

	stats := ModelStatistics{
		NumParameters: total,
		NumSparsified: int(sparsified),
		Layers:        make([]LayerSummary, 0, len(c.layers)),
	}
	if total > 0 {
		stats.SparsityLevel = float64(zeros) / float64(total)
	}
	if sparsified > 0 {
		stats.SparsityLevelForLayers = float64(zeros) / sparsified
	}

	for i, info := range c.layers {
		summary := LayerSummary{
			Name:          info.Name,
			WeightShape:   info.Weight().Shape().Clone(),
			NumElements:   int(counts[i]),
			SparsityLevel: float64(info.Operand.Zeros()) / counts[i],
		}
		if sparsified > 0 {
			summary.WeightPercentage = 100 * counts[i] / sparsified
		}
		stats.Layers = append(stats.Layers, summary)
	}
	return stats
}

// Render writes the statistics as text tables.
func (s MagnitudeStatistics) Render(w io.Writer) {
	fmt.Fprintf(w, "Sparsity level of the whole model: %.2f%% (%s of %s parameters)\n",
		100*s.Model.SparsityLevel,
		humanize.Comma(int64(float64(s.Model.NumParameters)*s.Model.SparsityLevel+0.5)),
		humanize.Comma(int64(s.Model.NumParameters)))
	fmt.Fprintf(w, "Sparsity level of all sparsified layers: %.2f%% (%s weights)\n\n",
		100*s.Model.SparsityLevelForLayers,
		humanize.Comma(int64(s.Model.NumSparsified)))

	thresholds := make(map[string]float64, len(s.Thresholds))
	for _, t := range s.Thresholds {
		thresholds[t.Name] = t.Threshold
	}

	data := make([][]string, 0, len(s.Model.Layers))
	for _, l := range s.Model.Layers {
		data = append(data, []string{
			l.Name,
			l.WeightShape.String(),
			humanize.Comma(int64(l.NumElements)),
			fmt.Sprintf("%.2f", 100*l.SparsityLevel),
			fmt.Sprintf("%.2f", l.WeightPercentage),
			fmt.Sprintf("%.4g", thresholds[l.Name]),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"LAYER", "SHAPE", "WEIGHTS", "SPARSITY %", "WEIGHT %", "THRESHOLD"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
