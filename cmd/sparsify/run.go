package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/sparsity/internal/adaptation"
	"github.com/born-ml/sparsity/internal/config"
	"github.com/born-ml/sparsity/internal/envconfig"
	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/sparsity"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a sparsity schedule over a synthetic MLP",
		Long: `Run builds an MLP of Linear, BatchNorm1d and ReLU layers, wraps it with a
magnitude sparsity controller and prints the achieved sparsity.

In global mode the configured schedule is stepped once per epoch. Between
steps the weights are pulled by SGD towards a second, randomly initialized
MLP of the same shape, with Gaussian gradient noise. In local mode every
layer is set to --level (default: params.sparsity_target).`,
		Args: cobra.NoArgs,
		RunE: runHandler,
	}

	runCmd.Flags().StringP("config", "c", "", "Algorithm config file (YAML or JSON)")
	runCmd.Flags().String("layers", "64,32,10", "Comma-separated layer widths, input first")
	runCmd.Flags().Int("epochs", 10, "Epochs to run the schedule for")
	runCmd.Flags().Int("steps", 1, "Optimizer steps per epoch")
	runCmd.Flags().Int64("seed", 1, "Random seed")
	runCmd.Flags().Float64("lr", 0.05, "SGD learning rate")
	runCmd.Flags().Float64("noise", 0.01, "Standard deviation of the gradient noise")
	runCmd.Flags().Float64("level", 0, "Sparsity level for local mode")
	runCmd.Flags().Bool("adapt", false, "Run batch norm adaptation after every level change")

	return runCmd
}

type runOptions struct {
	epochs int
	steps  int
	lr     float64
	noise  float64
	level  float64
	adapt  bool
}

func runHandler(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	layerSpec, _ := flags.GetString("layers")
	widths, err := parseLayers(layerSpec)
	if err != nil {
		return err
	}

	seed, _ := flags.GetInt64("seed")
	rng := rand.New(rand.NewSource(seed))

	var opts runOptions
	opts.epochs, _ = flags.GetInt("epochs")
	opts.steps, _ = flags.GetInt("steps")
	opts.lr, _ = flags.GetFloat64("lr")
	opts.noise, _ = flags.GetFloat64("noise")
	opts.adapt, _ = flags.GetBool("adapt")
	opts.level = cfg.Params.SparsityTarget
	if flags.Changed("level") {
		opts.level, _ = flags.GetFloat64("level")
	}

	model := buildMLP(widths, rng)
	sc := cfg.SparsityConfig()
	sc.ScoreWorkers = int(envconfig.NumWorkers())
	sc.AdaptationFactory = func(p adaptation.Params) (adaptation.Routine, error) {
		routine, err := adaptation.NewBatchNormAdaptation(p, adaptation.NewRandomSource(widths[0], rng))
		if err != nil {
			return nil, err
		}
		return routine, nil
	}

	ctrl, err := sparsity.NewController(model, sc)
	if err != nil {
		return err
	}
	slog.Info("controller ready", "layers", len(ctrl.Layers()), "mode", ctrl.Mode(), "importance", ctrl.Importance())

	if ctrl.Mode() == sparsity.Local {
		err = runLocal(ctrl, opts)
	} else {
		err = runGlobal(ctrl, newTrainer(ctrl, widths, opts, rng), opts)
	}
	if err != nil {
		return err
	}

	ctrl.Statistics().Render(cmd.OutOrStdout())
	return nil
}

func runGlobal(ctrl *sparsity.Controller, tr *trainer, opts runOptions) error {
	sched := ctrl.Scheduler()
	for epoch := 0; epoch < opts.epochs; epoch++ {
		if err := sched.EpochStep(); err != nil {
			return fmt.Errorf("epoch %d: %w", epoch, err)
		}
		for step := 0; step < opts.steps; step++ {
			tr.step()
			if err := sched.Step(); err != nil {
				return fmt.Errorf("epoch %d step %d: %w", epoch, step, err)
			}
		}

		if opts.adapt {
			err := ctrl.SetSparsityLevelWithOptions(sched.CurrentSparsityLevel(), sparsity.LevelOptions{RunAdaptation: true})
			if err != nil {
				return fmt.Errorf("epoch %d: %w", epoch, err)
			}
		}

		slog.Info("epoch done",
			"epoch", epoch,
			"level", sched.CurrentSparsityLevel(),
			"rate", ctrl.SparsityRate(),
			"stage", ctrl.CompressionStage())
	}
	return nil
}

func runLocal(ctrl *sparsity.Controller, opts runOptions) error {
	err := ctrl.SetSparsityLevelWithOptions(opts.level, sparsity.LevelOptions{RunAdaptation: opts.adapt})
	if err != nil {
		return err
	}
	for _, info := range ctrl.Layers() {
		slog.Debug("layer sparsified", "layer", info.Name, "rate", ctrl.SparsityRate(info))
	}
	return nil
}

// parseLayers parses "in,hidden...,out" into at least two positive widths.
func parseLayers(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return nil, errors.New("layers: need at least an input and an output width")
	}
	widths := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("layers: invalid width %q", p)
		}
		widths[i] = n
	}
	return widths, nil
}

// buildMLP chains Linear layers of the given widths with BatchNorm1d and
// ReLU between them.
func buildMLP(widths []int, rng *rand.Rand) *nn.Sequential {
	model := nn.NewSequential()
	for i := 0; i+1 < len(widths); i++ {
		model.Add(nn.NewLinear(widths[i], widths[i+1], rng))
		if i+2 < len(widths) {
			model.Add(nn.NewBatchNorm1d(widths[i+1], 1e-5, 0.1))
			model.Add(nn.NewReLU())
		}
	}
	return model
}
