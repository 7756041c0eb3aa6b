package main

import (
	"math/rand"

	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/optim"
	"github.com/born-ml/sparsity/internal/sparsity"
	"github.com/born-ml/sparsity/internal/tensor"
)

// trainer stands in for a training loop. Each step moves the sparsified
// weights towards the matching weights of a reference MLP, so weights keep
// changing under the masks the way they do during real fine-tuning.
type trainer struct {
	opt   *optim.SGD
	pairs []weightPair
	noise float64
	rng   *rand.Rand
	grads optim.Gradients
}

type weightPair struct {
	param  *nn.Parameter
	target *tensor.Tensor
}

func newTrainer(ctrl *sparsity.Controller, widths []int, opts runOptions, rng *rand.Rand) *trainer {
	reference := make(map[string]*tensor.Tensor)
	_ = nn.Walk(buildMLP(widths, rng), func(scope string, m nn.Module) error {
		if wm, ok := m.(nn.WeightedModule); ok {
			reference[scope] = wm.Weight().Tensor()
		}
		return nil
	})

	tr := &trainer{noise: opts.noise, rng: rng, grads: make(optim.Gradients)}
	params := make([]*nn.Parameter, 0, len(ctrl.Layers()))
	for _, info := range ctrl.Layers() {
		target, ok := reference[info.Name]
		if !ok {
			continue
		}
		p := info.Module.Weight()
		params = append(params, p)
		tr.pairs = append(tr.pairs, weightPair{param: p, target: target})
		tr.grads[p] = tensor.Zeros(p.Tensor().Shape())
	}
	tr.opt = optim.NewSGD(params, optim.SGDConfig{LR: float32(opts.lr)})
	return tr
}

// step applies one SGD step on 0.5*||w - target||^2 plus gradient noise.
func (tr *trainer) step() {
	for _, pair := range tr.pairs {
		g := tr.grads[pair.param].Data()
		w := pair.param.Tensor().Data()
		t := pair.target.Data()
		for i := range g {
			g[i] = w[i] - t[i] + float32(tr.rng.NormFloat64()*tr.noise)
		}
	}
	tr.opt.Step(tr.grads)
}
