package runtime

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/aretw0/grove/pkg/domain"
)

// PanicError is recorded when a body or hook panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error value, so errors.Is sees through MustGet panics.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ErrGoexit is recorded when a body or hook ends its goroutine with
// runtime.Goexit, e.g. through t.FailNow on a captured *testing.T.
var ErrGoexit = errors.New("body exited without returning (runtime.Goexit)")

// task is one in-flight body. Its context is cancelled once the engine stops
// waiting for it, but work the body does not tie to that context keeps running.
type task struct {
	done   chan error
	cancel context.CancelFunc
}

// start runs body on its own goroutine.
func start(parent context.Context, body domain.Body, r domain.Resolver) *task {
	ctx, cancel := context.WithCancel(parent)
	t := &task{done: make(chan error, 1), cancel: cancel}
	go func() {
		returned := false
		defer func() {
			if p := recover(); p != nil {
				t.done <- &PanicError{Value: p, Stack: debug.Stack()}
			} else if !returned {
				t.done <- ErrGoexit
			}
		}()
		err := body(ctx, r)
		returned = true
		t.done <- err
	}()
	return t
}

// await waits until the body settles, the timeout elapses (0 = no limit) or
// parent is cancelled, whichever comes first.
func (t *task) await(parent context.Context, timeout time.Duration) error {
	defer t.cancel()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case err := <-t.done:
		return err
	case <-expired:
		return fmt.Errorf("%w: did not settle within %s", domain.ErrTimeout, timeout)
	case <-parent.Done():
		return parent.Err()
	}
}

// settle runs body and waits for it under timeout.
func settle(ctx context.Context, timeout time.Duration, body domain.Body, r domain.Resolver) error {
	return start(ctx, body, r).await(ctx, timeout)
}
