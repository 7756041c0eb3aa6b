package sparsity

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/sparsity/internal/adaptation"
	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/parallel"
	"github.com/born-ml/sparsity/internal/schedule"
)

// Config configures a Controller.
type Config struct {
	SparsityInit     float64         // Level applied at construction
	Mode             string          // "global" (default) or "local"
	WeightImportance string          // "normed_abs" (default) or "abs"
	Schedule         string          // "polynomial" (default), "exponential", "multistep"; Global mode only
	ScheduleParams   schedule.Params // SparsityInit is overwritten with Config.SparsityInit
	IgnoredScopes    []string        // Layers to leave dense, see Build
	ScoreWorkers     int             // Scoring goroutines; 0 is one per CPU, 1 is sequential

	// Adaptation is forwarded to AdaptationFactory the first time an update
	// asks for adaptation.
	Adaptation        adaptation.Params
	AdaptationFactory adaptation.Factory
}

// LevelOptions refine a SetSparsityLevelWithOptions call.
type LevelOptions struct {
	// TargetLayer restricts the update to the named layer; its threshold is
	// computed from that layer alone in either mode. Empty means every layer.
	TargetLayer string

	// RunAdaptation runs the adaptation routine over the whole model after
	// the masks are updated.
	RunAdaptation bool
}

// Controller applies magnitude sparsity to a model.
type Controller struct {
	model      nn.Module
	layers     []*ModuleInfo
	byName     map[string]*ModuleInfo
	mode       Mode
	importance Importance
	scoring    parallel.Config
	scheduler  schedule.Scheduler // nil in Local mode

	adaptationParams  adaptation.Params
	adaptationFactory adaptation.Factory
	adaptation        adaptation.Routine // built on first use
}

// NewController wraps the weighted layers of model and applies
// cfg.SparsityInit.
//
// Unknown mode, importance or schedule keys fail with a *ConfigurationError.
// In Global mode the controller owns a scheduler built from cfg.Schedule.
func NewController(model nn.Module, cfg Config) (*Controller, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	imp, err := ParseImportance(cfg.WeightImportance)
	if err != nil {
		return nil, err
	}

	if err := checkLevel(cfg.SparsityInit); err != nil {
		return nil, err
	}

	layers, err := Build(model, cfg.IgnoredScopes)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		model:             model,
		layers:            layers,
		byName:            make(map[string]*ModuleInfo, len(layers)),
		mode:              mode,
		importance:        imp,
		scoring:           ScoreParallel(cfg.ScoreWorkers),
		adaptationParams:  cfg.Adaptation,
		adaptationFactory: cfg.AdaptationFactory,
	}
	for _, info := range layers {
		c.byName[info.Name] = info
	}

	if mode == Global {
		kind, err := schedule.ParseKind(cfg.Schedule)
		if err != nil {
			return nil, &ConfigurationError{Key: "schedule", Value: cfg.Schedule, Err: err}
		}
		params := cfg.ScheduleParams
		params.SparsityInit = cfg.SparsityInit
		c.scheduler, err = schedule.New(kind, c, params)
		if err != nil {
			return nil, &ConfigurationError{Key: "params", Value: kind.String(), Err: err}
		}
	}

	if err := c.SetSparsityLevel(cfg.SparsityInit); err != nil {
		return nil, err
	}

	slog.Debug("sparsity: controller ready",
		"layers", len(layers), "mode", mode, "importance", imp, "sparsity_init", cfg.SparsityInit)
	return c, nil
}

// SetSparsityLevel updates the masks of all unfrozen layers so that level of
// the weights are dropped. Global mode selects one threshold over the pooled
// scores of all layers. Local mode selects a threshold per layer, so every
// layer reaches level on its own.
func (c *Controller) SetSparsityLevel(level float64) error {
	return c.SetSparsityLevelWithOptions(level, LevelOptions{})
}

// SetSparsityLevelWithOptions is SetSparsityLevel with a target layer and
// optional adaptation.
//
// A level outside [0, 1) or NaN returns *OutOfRangeError and an unknown
// target layer returns ErrUnknownLayer; in both cases no mask changes.
// An adaptation failure is returned unchanged and the updated masks stay in
// place.
func (c *Controller) SetSparsityLevelWithOptions(level float64, opts LevelOptions) error {
	if err := checkLevel(level); err != nil {
		return err
	}

	targets := c.layers
	if opts.TargetLayer != "" {
		info, ok := c.byName[opts.TargetLayer]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLayer, opts.TargetLayer)
		}
		targets = []*ModuleInfo{info}
	}

	if c.mode == Local || len(targets) == 1 {
		for _, info := range targets {
			c.setMasksForThreshold(c.threshold(level, info), []*ModuleInfo{info})
		}
		slog.Debug("sparsity: level set per layer", "level", level, "layers", len(targets))
	} else {
		threshold := c.threshold(level, targets...)
		c.setMasksForThreshold(threshold, targets)
		slog.Debug("sparsity: level set", "level", level, "threshold", threshold, "layers", len(targets))
	}

	if opts.RunAdaptation {
		return c.runAdaptation()
	}
	return nil
}

// checkLevel rejects levels outside [0, 1), NaN included.
func checkLevel(level float64) error {
	if !(level >= 0 && level < 1) {
		return &OutOfRangeError{Level: level}
	}
	return nil
}

func (c *Controller) threshold(level float64, layers ...*ModuleInfo) float64 {
	return selectThreshold(level, c.importance, layers, c.scoring)
}

func (c *Controller) setMasksForThreshold(threshold float64, targets []*ModuleInfo) {
	for _, info := range targets {
		info.Operand.update(info.Weight(), c.importance, threshold, c.scoring)
	}
}

func (c *Controller) runAdaptation() error {
	if c.adaptation == nil {
		if c.adaptationFactory == nil {
			return ErrNoAdaptation
		}
		routine, err := c.adaptationFactory(c.adaptationParams)
		if err != nil {
			return err
		}
		c.adaptation = routine
	}
	return c.adaptation.Run(c.model)
}

// Freeze latches the mask of every layer. Later SetSparsityLevel calls still
// compute thresholds but change no mask.
func (c *Controller) Freeze() {
	for _, info := range c.layers {
		info.Operand.Freeze()
	}
}

// FreezeLayer latches the mask of one layer.
func (c *Controller) FreezeLayer(name string) error {
	info, ok := c.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	info.Operand.Freeze()
	return nil
}

// CompressionStage reports schedule progress.
//
// Local mode is always FullyCompressed since every layer hits its own level
// exactly. In Global mode the stage is read from the scheduler: Uncompressed
// at level 0, FullyCompressed once the target level is reached, otherwise
// PartiallyCompressed.
func (c *Controller) CompressionStage() CompressionStage {
	if c.mode == Local {
		return FullyCompressed
	}

	current := c.scheduler.CurrentSparsityLevel()
	if current == 0 {
		return Uncompressed
	}
	if current >= c.scheduler.TargetLevel() {
		return FullyCompressed
	}
	return PartiallyCompressed
}

// Scheduler returns the scheduler driving the controller, nil in Local mode.
func (c *Controller) Scheduler() schedule.Scheduler {
	return c.scheduler
}

// Mode returns the threshold mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Importance returns the importance function.
func (c *Controller) Importance() Importance {
	return c.importance
}

// Model returns the wrapped model.
func (c *Controller) Model() nn.Module {
	return c.model
}

// Layers returns the sparsified layers in model order.
func (c *Controller) Layers() []*ModuleInfo {
	return c.layers
}

// Layer returns the sparsified layer with the given scope name.
func (c *Controller) Layer(name string) (*ModuleInfo, bool) {
	info, ok := c.byName[name]
	return info, ok
}

// SparsityRate returns the fraction of masked-out weights over layers, or
// over every sparsified layer when none are given.
func (c *Controller) SparsityRate(layers ...*ModuleInfo) float64 {
	if len(layers) == 0 {
		layers = c.layers
	}
	zeros, total := 0, 0
	for _, info := range layers {
		zeros += info.Operand.Zeros()
		total += info.Weight().NumElements()
	}
	if total == 0 {
		return 0
	}
	return float64(zeros) / float64(total)
}
