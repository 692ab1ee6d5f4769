package domain

import (
	"context"
	"fmt"
)

// Resolver gives bodies and hooks access to the lazy bindings visible from their node.
type Resolver interface {
	// Get resolves name from the nearest context on the execution path that defines it.
	Get(name string) (any, error)
	// Subject resolves the reserved "subject" binding.
	Subject() (any, error)
}

// Thunk produces a binding value on first resolution within one execution.
type Thunk func(r Resolver) (any, error)

// Body is the code of an example or a hook. It may block; the engine waits for it
// to return or for its timeout to elapse, cancelling ctx in the latter case.
type Body func(ctx context.Context, r Resolver) error

// Get resolves name and asserts its type.
func Get[T any](r Resolver, name string) (T, error) {
	var zero T
	v, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &BindingError{Name: name, Err: fmt.Errorf("%w: got %T, want %T", ErrBindingType, v, zero)}
	}
	return typed, nil
}

// MustGet is like Get but panics on failure. The engine recovers the panic and
// records it against the running example.
func MustGet[T any](r Resolver, name string) T {
	v, err := Get[T](r, name)
	if err != nil {
		panic(err)
	}
	return v
}
