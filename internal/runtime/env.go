package runtime

import (
	"github.com/aretw0/grove/pkg/domain"
)

// env is the lazy binding environment of one example or hook execution.
// It resolves names along the execution path, nearest node first, and memoizes
// thunk results until the execution ends. It is not safe for concurrent use.
type env struct {
	path      []*domain.Node
	memo      map[string]any
	resolving map[string]bool
}

var _ domain.Resolver = (*env)(nil)

// newEnv creates a fresh environment scoped to the path root → node.
func newEnv(node *domain.Node) *env {
	return &env{
		path:      node.Path(),
		memo:      make(map[string]any),
		resolving: make(map[string]bool),
	}
}

// Get resolves name from the nearest node on the path that declares it.
func (e *env) Get(name string) (any, error) {
	if v, ok := e.memo[name]; ok {
		return v, nil
	}

	b := e.lookup(name)
	if b == nil {
		return nil, &domain.BindingError{Name: name, Err: domain.ErrUnknownBinding}
	}
	if !b.Lazy() {
		return b.Value, nil
	}

	if e.resolving[name] {
		return nil, &domain.BindingError{Name: name, Err: domain.ErrBindingCycle}
	}
	e.resolving[name] = true
	defer delete(e.resolving, name)

	v, err := b.Thunk(e)
	if err != nil {
		return nil, &domain.BindingError{Name: name, Err: err}
	}
	e.memo[name] = v
	return v, nil
}

// Subject resolves the reserved subject binding.
func (e *env) Subject() (any, error) {
	return e.Get(domain.SubjectName)
}

func (e *env) lookup(name string) *domain.Binding {
	for i := len(e.path) - 1; i >= 0; i-- {
		if b, ok := e.path[i].Binding(name); ok {
			return b
		}
	}
	return nil
}
