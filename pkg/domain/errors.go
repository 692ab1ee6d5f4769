package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownBinding is returned when a name is resolved that no context on the execution path defines.
var ErrUnknownBinding = errors.New("unknown binding")

// ErrBindingCycle is returned when a thunk (directly or indirectly) resolves its own name.
var ErrBindingCycle = errors.New("binding cycle")

// ErrBindingType is returned by Get when a binding resolves to a value of an unexpected type.
var ErrBindingType = errors.New("binding type mismatch")

// ErrBindingCollision is returned when a declared name collides with an externally defined name.
var ErrBindingCollision = errors.New("binding collides with external name")

// ErrUnknownSharedDefinition is returned when ItBehavesLike or IncludeContext names an unregistered group.
var ErrUnknownSharedDefinition = errors.New("unknown shared definition")

// ErrDuplicateSharedDefinition is returned when a shared definition name is registered twice.
var ErrDuplicateSharedDefinition = errors.New("duplicate shared definition")

// ErrHookFailure marks errors raised by before/after/beforeEach/afterEach hooks.
var ErrHookFailure = errors.New("hook failure")

// ErrTimeout is returned when a body or hook does not settle within its timeout.
var ErrTimeout = errors.New("timeout")

// ErrMalformedOptions is returned for invalid context/example options.
var ErrMalformedOptions = errors.New("malformed options")

// ErrUnknownAddress is returned when a selection names a structural address that does not exist.
var ErrUnknownAddress = errors.New("unknown address")

// ErrBuilderClosed is returned when a context handle is used after its callback returned.
var ErrBuilderClosed = errors.New("builder closed")

// BindingError describes a failed resolution of a named binding.
type BindingError struct {
	Name string
	Err  error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding %q: %v", e.Name, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// HookError wraps a failure raised while running a hook.
// It matches ErrHookFailure with errors.Is and unwraps to the hook's own error.
type HookError struct {
	Kind        HookKind
	Description string
	Address     Address
	Err         error
}

func (e *HookError) Error() string {
	label := string(e.Kind) + " hook"
	if e.Description != "" {
		label = fmt.Sprintf("%s %q", label, e.Description)
	}
	return fmt.Sprintf("%s at %s: %v", label, e.Address, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// Is reports whether target is ErrHookFailure.
func (e *HookError) Is(target error) bool {
	return target == ErrHookFailure
}

// BuildError is a structural error found while building the tree.
type BuildError struct {
	Location Location
	Err      error
}

func (e *BuildError) Error() string {
	if e.Location.File == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
