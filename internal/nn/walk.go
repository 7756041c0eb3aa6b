package nn

import (
	"fmt"
	"strings"
)

// Container is implemented by modules that hold child modules.
type Container interface {
	Children() []Module
}

// WalkFunc is called for every module visited by Walk.
// Returning an error stops the walk.
type WalkFunc func(scope string, m Module) error

// Walk visits root and every nested module depth-first, in child order.
//
// Scopes name a module by its path from the root, e.g.
// "Sequential/Linear[0]" or "Sequential/Sequential[1]/Linear[0]".
// The index is the module's position in its parent container.
func Walk(root Module, fn WalkFunc) error {
	return walk(TypeName(root), root, fn)
}

func walk(scope string, m Module, fn WalkFunc) error {
	if err := fn(scope, m); err != nil {
		return err
	}

	c, ok := m.(Container)
	if !ok {
		return nil
	}
	for i, child := range c.Children() {
		childScope := fmt.Sprintf("%s/%s[%d]", scope, TypeName(child), i)
		if err := walk(childScope, child, fn); err != nil {
			return err
		}
	}
	return nil
}

// TypeName returns the bare Go type name of a module ("Linear", "ReLU").
func TypeName(m Module) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", m), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
