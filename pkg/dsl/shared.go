package dsl

import (
	"fmt"
	"slices"

	"github.com/aretw0/grove/pkg/domain"
)

// SharedKind distinguishes the two kinds of shared definitions.
type SharedKind string

const (
	// SharedExampleGroup is grafted as a new nested context by ItBehavesLike.
	SharedExampleGroup SharedKind = "example-group"
	// SharedContextKind is spliced into the including context by IncludeContext.
	SharedContextKind SharedKind = "context"
)

// SharedFunc populates a context with the arguments supplied at inclusion time.
type SharedFunc func(c *C, args ...any)

// SharedDefinition is a named, parameterized group of declarations.
type SharedDefinition struct {
	Name     string
	Kind     SharedKind
	Fn       SharedFunc
	Location domain.Location
}

// SharedExamples registers a reusable example group, included with ItBehavesLike.
// The definition must be registered before it is included.
func (c *C) SharedExamples(name string, fn SharedFunc) {
	c.register(caller(), name, SharedExampleGroup, fn)
}

// SharedContext registers a reusable set of declarations, included with IncludeContext.
func (c *C) SharedContext(name string, fn SharedFunc) {
	c.register(caller(), name, SharedContextKind, fn)
}

// ItBehavesLike grafts the shared example group name as a new child context
// labelled "it behaves like <name>", built with args.
func (c *C) ItBehavesLike(name string, args ...any) {
	loc := caller()
	if !c.usable(loc) {
		return
	}
	def, ok := c.lookup(loc, name, SharedExampleGroup)
	if !ok {
		return
	}
	c.context(loc, "it behaves like "+name, name, func(child *C) {
		c.b.including(name, func() { def.Fn(child, args...) })
	}, nil)
}

// IncludeContext runs the shared context name directly against this context.
// Its declarations land on this context in call order, so a binding set after
// IncludeContext overrides one set inside it and vice versa.
func (c *C) IncludeContext(name string, args ...any) {
	loc := caller()
	if !c.usable(loc) {
		return
	}
	def, ok := c.lookup(loc, name, SharedContextKind)
	if !ok {
		return
	}
	c.b.including(name, func() { def.Fn(c, args...) })
}

func (c *C) register(loc domain.Location, name string, kind SharedKind, fn SharedFunc) {
	if !c.usable(loc) {
		return
	}
	if fn == nil {
		c.b.fail(loc, fmt.Errorf("shared definition %q requires a body", name))
		return
	}
	err := c.b.shared.Register(name, SharedDefinition{Name: name, Kind: kind, Fn: fn, Location: loc})
	if err != nil {
		c.b.fail(loc, err)
	}
}

func (c *C) lookup(loc domain.Location, name string, kind SharedKind) (SharedDefinition, bool) {
	def, err := c.b.shared.Lookup(name)
	if err != nil {
		c.b.fail(loc, err)
		return SharedDefinition{}, false
	}
	if def.Kind != kind {
		c.b.fail(loc, fmt.Errorf("%w: %q is a shared %s, not a shared %s", domain.ErrUnknownSharedDefinition, name, def.Kind, kind))
		return SharedDefinition{}, false
	}
	if slices.Contains(c.b.active, name) {
		c.b.fail(loc, fmt.Errorf("shared definition %q includes itself", name))
		return SharedDefinition{}, false
	}
	return def, true
}

func (b *Builder) including(name string, fn func()) {
	b.active = append(b.active, name)
	defer func() { b.active = b.active[:len(b.active)-1] }()
	fn()
}
