// Package reporter turns engine events into human and machine readable output.
//
// Every reporter exposes the domain.LifecycleHooks the engine calls while it
// runs, plus Finish, which receives the final report once the run is over.
package reporter

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/aretw0/grove/pkg/domain"
	"golang.org/x/term"
)

// Reporter receives events during a run and the report at the end.
type Reporter interface {
	Hooks() domain.LifecycleHooks
	Finish(report *domain.Report) error
}

// Multi fans events out to every reporter in order.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

type multi []Reporter

func (m multi) Hooks() domain.LifecycleHooks {
	hooks := make([]domain.LifecycleHooks, len(m))
	for i, r := range m {
		hooks[i] = r.Hooks()
	}
	return Combine(hooks...)
}

func (m multi) Finish(report *domain.Report) error {
	var errs []error
	for _, r := range m {
		if err := r.Finish(report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Combine merges several hook sets into one. Nil callbacks are skipped.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			for _, s := range sets {
				if s.OnNodeEnter != nil {
					s.OnNodeEnter(ctx, e)
				}
			}
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			for _, s := range sets {
				if s.OnNodeLeave != nil {
					s.OnNodeLeave(ctx, e)
				}
			}
		},
		OnResult: func(ctx context.Context, e *domain.ResultEvent) {
			for _, s := range sets {
				if s.OnResult != nil {
					s.OnResult(ctx, e)
				}
			}
		},
		OnContextFailure: func(ctx context.Context, e *domain.ContextFailureEvent) {
			for _, s := range sets {
				if s.OnContextFailure != nil {
					s.OnContextFailure(ctx, e)
				}
			}
		},
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
