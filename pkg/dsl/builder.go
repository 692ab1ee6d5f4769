package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/grove/pkg/domain"
	"github.com/aretw0/grove/pkg/registry"
)

// vocabulary holds the names of the DSL entry points. Bindings may not reuse them.
var vocabulary = []string{
	"context", "describe", "example", "it", "set",
	"before", "after", "beforeEach", "afterEach",
	"sharedExamples", "itBehavesLike", "sharedContext", "includeContext",
}

// Builder manages the tree construction.
// It embeds the handle of the synthetic root context, so top-level declarations
// are made directly on the Builder.
type Builder struct {
	*C

	shared   *registry.Registry[SharedDefinition]
	external map[string]struct{}
	errs     []error
	active   []string
	tree     *domain.Tree
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithExternalNames declares names bound outside the DSL. Declaring a binding
// with one of these names is a build error.
func WithExternalNames(names ...string) BuilderOption {
	return func(b *Builder) {
		for _, n := range names {
			b.external[n] = struct{}{}
		}
	}
}

// New creates a new tree builder.
func New(opts ...BuilderOption) *Builder {
	b := &Builder{
		shared:   registry.New[SharedDefinition](),
		external: make(map[string]struct{}),
	}
	for _, n := range vocabulary {
		b.external[n] = struct{}{}
	}
	for _, opt := range opts {
		opt(b)
	}
	b.C = &C{
		node: &domain.Node{Kind: domain.KindContext},
		b:    b,
	}
	return b
}

// Build closes the builder and returns the tree with addresses assigned.
// Every structural error recorded while declaring is returned joined; a tree is
// only returned when there were none. Build is idempotent.
func (b *Builder) Build() (*domain.Tree, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("build failed: %w", errors.Join(b.errs...))
	}
	if b.tree == nil {
		b.C.closed = true
		b.tree = domain.NewTree(b.C.node)
	}
	return b.tree, nil
}

func (b *Builder) fail(loc domain.Location, err error) {
	b.errs = append(b.errs, &domain.BuildError{Location: loc, Err: err})
}

func (b *Builder) checkName(name string) error {
	if name == "" {
		return fmt.Errorf("binding name must not be empty")
	}
	if _, taken := b.external[name]; taken {
		return fmt.Errorf("%w: %q", domain.ErrBindingCollision, name)
	}
	return nil
}
