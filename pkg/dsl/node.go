package dsl

import (
	"context"
	"fmt"

	"github.com/aretw0/grove/pkg/domain"
)

// C is the handle of an open context. Every context callback receives the handle
// of the context it populates; declarations append to that context in call order.
// A handle is only usable while its callback runs.
type C struct {
	node   *domain.Node
	b      *Builder
	closed bool
}

// Describe declares a nested context and runs fn immediately to populate it.
func (c *C) Describe(description string, fn func(c *C), opts ...Option) {
	c.context(caller(), description, "", fn, opts)
}

// Context is an alias of Describe.
func (c *C) Context(description string, fn func(c *C), opts ...Option) {
	c.context(caller(), description, "", fn, opts)
}

// It declares an example. A nil body declares a pending example.
func (c *C) It(description string, body domain.Body, opts ...Option) {
	c.example(caller(), description, body, opts)
}

// Example is an alias of It.
func (c *C) Example(description string, body domain.Body, opts ...Option) {
	c.example(caller(), description, body, opts)
}

// Pending declares an example that is reported as pending and never run.
func (c *C) Pending(description string) {
	c.example(caller(), description, nil, nil)
}

// Set declares a lazy binding on this context. A later Set of the same name on
// the same context overwrites it.
//
// Accepted producers: domain.Thunk, func(domain.Resolver) (any, error),
// func(domain.Resolver) any, func() (any, error) and func() any. Any other value
// is bound literally.
func (c *C) Set(name string, value any) {
	loc := caller()
	if !c.usable(loc) {
		return
	}
	if err := c.b.checkName(name); err != nil {
		c.b.fail(loc, err)
		return
	}
	c.node.SetBinding(newBinding(name, value))
}

// Subject declares the reserved "subject" binding.
func (c *C) Subject(value any) {
	loc := caller()
	if !c.usable(loc) {
		return
	}
	c.node.SetBinding(newBinding(domain.SubjectName, value))
}

// Before registers a hook that runs once before the first example of this context.
func (c *C) Before(body domain.Body, opts ...Option) {
	c.hook(caller(), domain.HookBefore, body, opts)
}

// After registers a hook that runs once after the last example of this context.
func (c *C) After(body domain.Body, opts ...Option) {
	c.hook(caller(), domain.HookAfter, body, opts)
}

// BeforeEach registers a hook that runs before every example beneath this context.
func (c *C) BeforeEach(body domain.Body, opts ...Option) {
	c.hook(caller(), domain.HookBeforeEach, body, opts)
}

// AfterEach registers a hook that runs after every example beneath this context.
func (c *C) AfterEach(body domain.Body, opts ...Option) {
	c.hook(caller(), domain.HookAfterEach, body, opts)
}

func (c *C) usable(loc domain.Location) bool {
	if c.closed {
		c.b.fail(loc, fmt.Errorf("%w: context %q is no longer open", domain.ErrBuilderClosed, c.node.Description))
		return false
	}
	return true
}

func (c *C) context(loc domain.Location, description, shared string, fn func(c *C), opts []Option) *domain.Node {
	if !c.usable(loc) {
		return nil
	}
	s, err := applyOptions(opts)
	if err != nil {
		c.b.fail(loc, err)
	}
	child := &domain.Node{
		Kind:        domain.KindContext,
		Description: description,
		Location:    loc,
		Shared:      shared,
		Options:     s.options,
		Parent:      c.node,
	}
	c.node.Children = append(c.node.Children, child)

	handle := &C{node: child, b: c.b}
	if fn != nil {
		fn(handle)
	}
	handle.closed = true
	return child
}

func (c *C) example(loc domain.Location, description string, body domain.Body, opts []Option) {
	if !c.usable(loc) {
		return
	}
	s, err := applyOptions(opts)
	if err != nil {
		c.b.fail(loc, err)
	}
	if s.options.Random != nil {
		c.b.fail(loc, fmt.Errorf("%w: random is not applicable to example %q", domain.ErrMalformedOptions, description))
	}
	c.node.Children = append(c.node.Children, &domain.Node{
		Kind:        domain.KindExample,
		Description: description,
		Location:    loc,
		Options:     s.options,
		Body:        body,
		Parent:      c.node,
	})
}

func (c *C) hook(loc domain.Location, kind domain.HookKind, body domain.Body, opts []Option) {
	if !c.usable(loc) {
		return
	}
	if body == nil {
		c.b.fail(loc, fmt.Errorf("%s hook requires a body", kind))
		return
	}
	s, err := applyOptions(opts)
	if err != nil {
		c.b.fail(loc, err)
	}
	if s.options.Random != nil {
		c.b.fail(loc, fmt.Errorf("%w: random is not applicable to %s hooks", domain.ErrMalformedOptions, kind))
	}
	c.node.Hooks.Add(&domain.Hook{
		Kind:        kind,
		Description: s.description,
		Timeout:     s.options.Timeout,
		Body:        body,
		Location:    loc,
	})
}

func newBinding(name string, value any) *domain.Binding {
	b := &domain.Binding{Name: name}
	switch v := value.(type) {
	case domain.Thunk:
		b.Thunk = v
	case func(domain.Resolver) (any, error):
		b.Thunk = v
	case func(domain.Resolver) any:
		b.Thunk = func(r domain.Resolver) (any, error) { return v(r), nil }
	case func() (any, error):
		b.Thunk = func(domain.Resolver) (any, error) { return v() }
	case func() any:
		b.Thunk = func(domain.Resolver) (any, error) { return v(), nil }
	default:
		b.Value = value
	}
	return b
}

// Noop is a body that does nothing. It is handy for examples that only exercise hooks.
func Noop(context.Context, domain.Resolver) error { return nil }
