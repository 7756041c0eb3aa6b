package sparsity

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/born-ml/sparsity/internal/nn"
	"github.com/born-ml/sparsity/internal/tensor"
)

// regexPrefix marks an ignored scope as a regular expression instead of an
// exact scope name.
const regexPrefix = "{re}"

// ModuleInfo ties one sparsified layer to the mask operand that gates it.
type ModuleInfo struct {
	Name    string            // Scope of the layer in the model
	Module  nn.WeightedModule // The layer; its weight is read, never written
	Operand *BinaryMask       // Owned by this entry
}

// Weight returns the layer weight tensor.
func (info *ModuleInfo) Weight() *tensor.Tensor {
	return info.Module.Weight().Tensor()
}

// Build wraps every weighted layer of model with a BinaryMask.
//
// Layers whose scope matches an entry of ignoredScopes are left alone. An
// entry matches either the exact scope or, when prefixed with "{re}", any
// scope the regular expression matches. Each mask is installed as the
// layer's weight pre-op. A layer reachable through several paths is wrapped
// once, under its first scope.
func Build(model nn.Module, ignoredScopes []string) ([]*ModuleInfo, error) {
	ignored, err := compileScopes(ignoredScopes)
	if err != nil {
		return nil, err
	}

	var infos []*ModuleInfo
	seen := make(map[nn.WeightedModule]bool)
	err = nn.Walk(model, func(scope string, m nn.Module) error {
		wm, ok := m.(nn.WeightedModule)
		if !ok || seen[wm] {
			return nil
		}
		if ignored.match(scope) {
			slog.Debug("sparsity: ignoring layer", "scope", scope)
			return nil
		}
		seen[wm] = true

		op := NewBinaryMask(wm.Weight().Tensor().Shape())
		wm.SetWeightPreOp(op)
		infos = append(infos, &ModuleInfo{Name: scope, Module: wm, Operand: op})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

type scopeMatcher struct {
	exact map[string]bool
	res   []*regexp.Regexp
}

func compileScopes(scopes []string) (*scopeMatcher, error) {
	m := &scopeMatcher{exact: make(map[string]bool)}
	for _, s := range scopes {
		pattern, isRegex := strings.CutPrefix(s, regexPrefix)
		if !isRegex {
			m.exact[s] = true
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &ConfigurationError{Key: "ignored_scopes", Value: s, Err: err}
		}
		m.res = append(m.res, re)
	}
	return m, nil
}

func (m *scopeMatcher) match(scope string) bool {
	if m.exact[scope] {
		return true
	}
	for _, re := range m.res {
		if re.MatchString(scope) {
			return true
		}
	}
	return false
}
