package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/grove/pkg/domain"
	"github.com/muesli/termenv"
)

// Text prints an indented tree of contexts and results as the run progresses,
// followed by counts and the list of failures.
type Text struct {
	w       io.Writer
	profile termenv.Profile
	hints   bool
	command string
	summary func(string) (string, error)

	mu sync.Mutex
}

// TextOption configures a Text reporter.
type TextOption func(*Text)

// WithColor forces colour on or off. By default colour is used only when the
// writer is a terminal.
func WithColor(color bool) TextOption {
	return func(t *Text) {
		t.profile = termenv.Ascii
		if color {
			t.profile = termenv.ANSI
		}
	}
}

// WithRerunHints prints a selector for every failing example.
func WithRerunHints(enabled bool) TextOption {
	return func(t *Text) {
		t.hints = enabled
	}
}

// WithCommand names the executable used in rerun hints. It defaults to "grove".
func WithCommand(name string) TextOption {
	return func(t *Text) {
		t.command = name
	}
}

// WithMarkdownSummary renders the failure summary through render (see RenderSummary)
// instead of the plain list.
func WithMarkdownSummary(render func(string) (string, error)) TextOption {
	return func(t *Text) {
		t.summary = render
	}
}

// NewText creates a text reporter writing to w.
func NewText(w io.Writer, opts ...TextOption) *Text {
	t := &Text{w: w, profile: termenv.Ascii, hints: true, command: "grove"}
	if IsTerminal(w) {
		t.profile = termenv.NewOutput(w).ColorProfile()
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Hooks prints each context as it is entered and each result as it settles.
func (t *Text) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			if e.Kind != domain.KindContext {
				return
			}
			t.printf(e.Depth, "%s\n", e.Description)
		},
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			res := e.Result
			line := t.mark(res.Status) + " " + res.Description
			switch res.Status {
			case domain.StatusPending:
				line += t.dim(" (pending)")
			case domain.StatusPassed:
			default:
				line += t.dim(fmt.Sprintf(" (%s)", res.Status))
			}
			t.printf(e.Depth, "%s\n", line)
		},
		OnContextFailure: func(_ context.Context, e *domain.ContextFailureEvent) {
			msg := fmt.Sprintf("! %s hook failed: %s", e.Failure.Hook, e.Failure.Failure)
			t.printf(e.Depth+1, "%s\n", t.colour(msg, "1"))
		},
	}
}

// Finish prints the counts and the failures of the run.
func (t *Text) Finish(report *domain.Report) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.summary != nil && !report.OK() {
		rendered, err := t.summary(Summary(report))
		if err == nil {
			_, err = fmt.Fprint(t.w, "\n"+rendered)
			if err != nil {
				return err
			}
			return t.counts(report)
		}
	}

	failures := report.Failures()
	if len(failures) > 0 {
		fmt.Fprintf(t.w, "\nFailures:\n")
	}
	for i, res := range failures {
		fmt.Fprintf(t.w, "\n  %d) %s\n", i+1, res.FullDescription)
		for _, line := range strings.Split(res.Failure, "\n") {
			fmt.Fprintf(t.w, "     %s\n", t.colour(line, "1"))
		}
		if t.hints {
			fmt.Fprintf(t.w, "     %s\n", t.dim("# rerun: "+t.command+" run --select '"+Selector(res)+"'"))
		}
	}
	for _, f := range report.ContextFailures {
		fmt.Fprintf(t.w, "\n  %s hook of %q at %s failed:\n     %s\n", f.Hook, f.Description, f.Address, t.colour(f.Failure, "1"))
	}
	return t.counts(report)
}

func (t *Text) counts(report *domain.Report) error {
	c := report.Counts()
	line := fmt.Sprintf("\n%d examples, %d failed, %d errored, %d timed out, %d pending",
		len(report.Results), c[domain.StatusFailed], c[domain.StatusErrored], c[domain.StatusTimedOut], c[domain.StatusPending])
	if report.OK() {
		line = t.colour(line, "2")
	} else {
		line = t.colour(line, "1")
	}
	if _, err := fmt.Fprintln(t.w, line); err != nil {
		return err
	}
	if report.Randomized() {
		_, err := fmt.Fprintf(t.w, "Randomized with seed %d\n", report.Seed)
		return err
	}
	return nil
}

func (t *Text) printf(depth int, format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, strings.Repeat("  ", max(depth, 0))+format, args...)
}

func (t *Text) mark(s domain.Status) string {
	switch s {
	case domain.StatusPassed:
		return t.colour("✓", "2")
	case domain.StatusPending:
		return t.colour("-", "3")
	case domain.StatusTimedOut:
		return t.colour("⏱", "1")
	default:
		return t.colour("✗", "1")
	}
}

func (t *Text) colour(s, ansi string) string {
	return t.profile.String(s).Foreground(t.profile.Color(ansi)).String()
}

func (t *Text) dim(s string) string {
	return t.profile.String(s).Faint().String()
}

// Selector renders the "<file>[i:j:k]" reference that reruns res alone.
func Selector(res domain.ExecutionResult) string {
	return res.Location.File + res.Address.String()
}
