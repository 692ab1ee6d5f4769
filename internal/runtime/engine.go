package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/grove/internal/logging"
	"github.com/aretw0/grove/pkg/domain"
)

// Engine walks a built tree and executes its examples one at a time.
type Engine struct {
	tree    *domain.Tree
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	random  bool
	seed    uint64
	timeout time.Duration
	now     func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers the reporter callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRandom sets the process-wide random default used where no context decides.
func WithRandom(random bool) EngineOption {
	return func(e *Engine) {
		e.random = random
	}
}

// WithSeed fixes the seed of random ordering. Zero picks a seed per run.
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithDefaultTimeout sets the timeout used where no node decides. Zero means unlimited.
func WithDefaultTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine creates an engine for tree.
func NewEngine(tree *domain.Tree, opts ...EngineOption) *Engine {
	e := &Engine{
		tree:   tree,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the examples in the subtrees at addrs (the whole tree if none).
// Example and hook failures are recorded in the report, never returned; the
// error is only set for an invalid selection or when ctx is cancelled, in which
// case the partial report is returned alongside it.
func (e *Engine) Run(ctx context.Context, addrs ...domain.Address) (*domain.Report, error) {
	sel, err := newSelection(e.tree, addrs)
	if err != nil {
		return nil, err
	}

	seed := e.seed
	if seed == 0 {
		seed = uint64(e.now().UnixNano())
	}

	c := takeCensus(e.tree, sel)
	r := &run{
		Engine: e,
		census: c,
		sched:  NewScheduler(c.runnable),
		order:  newOrderer(seed, e.random),
		report: &domain.Report{Seed: seed, Random: e.random, Started: e.now()},
	}

	e.logger.Debug("run started", "examples", len(c.runnable), "seed", seed, "random", e.random, "selection", len(addrs))
	err = r.visit(ctx, e.tree.Root)
	r.report.Shuffled = r.order.shuffled
	r.report.Elapsed = e.now().Sub(r.report.Started)
	e.logger.Debug("run finished", "elapsed", r.report.Elapsed, "failures", len(r.report.Failures()))

	return r.report, err
}

// run holds the state of a single Run call.
type run struct {
	*Engine
	census *census
	sched  *Scheduler
	order  *orderer
	report *domain.Report
}

func (r *run) visit(ctx context.Context, n *domain.Node) error {
	if r.census.visible[n] == 0 {
		return nil
	}
	if !n.IsRoot() {
		r.emitNode(ctx, domain.EventNodeEnter, n, r.hooks.OnNodeEnter)
		defer r.emitNode(ctx, domain.EventNodeLeave, n, r.hooks.OnNodeLeave)
	}

	if n.IsExample() {
		r.runExample(ctx, n)
		return ctx.Err()
	}

	for _, child := range r.order.children(n) {
		if err := r.visit(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) runExample(ctx context.Context, ex *domain.Node) {
	res := domain.ExecutionResult{
		Address:         ex.Address,
		Description:     ex.Description,
		FullDescription: ex.FullDescription(),
		Location:        ex.Location,
	}

	if ex.Pending() {
		res.Status = domain.StatusPending
		r.record(ctx, ex, res)
		return
	}

	r.enterContexts(ctx, ex)

	started := r.now()
	if blocked := r.sched.Blocked(ex); blocked != nil {
		res.Status, res.Err = domain.StatusErrored, blocked
	} else {
		res.Status, res.Err = r.execute(ctx, ex)
	}
	res.Elapsed = r.now().Sub(started)
	if res.Err != nil {
		res.Failure = res.Err.Error()
	}
	r.record(ctx, ex, res)

	r.leaveContexts(ctx, ex)
}

// execute runs the beforeEach chain, the body and the afterEach chain of ex.
func (r *run) execute(ctx context.Context, ex *domain.Node) (domain.Status, error) {
	status := domain.StatusPassed
	var errs []error

	for _, s := range beforeEachSteps(ex) {
		if err := r.runHook(ctx, s); err != nil {
			status = hookStatus(err)
			errs = append(errs, err)
			break
		}
	}

	if len(errs) == 0 {
		err := settle(ctx, ex.EffectiveTimeout(r.timeout), ex.Body, newEnv(ex))
		if err != nil {
			status = domain.StatusFailed
			if errors.Is(err, domain.ErrTimeout) {
				status = domain.StatusTimedOut
			}
			errs = append(errs, err)
		}
	}

	for _, s := range afterEachSteps(ex) {
		if err := r.runHook(ctx, s); err != nil {
			if status == domain.StatusPassed {
				status = hookStatus(err)
			}
			errs = append(errs, err)
		}
	}

	switch len(errs) {
	case 0:
		return status, nil
	case 1:
		return status, errs[0]
	default:
		return status, errors.Join(errs...)
	}
}

// enterContexts runs the before hooks of every context ex enters for the first time.
func (r *run) enterContexts(ctx context.Context, ex *domain.Node) {
	for _, n := range r.sched.Enter(ex) {
		if r.sched.Blocked(n) != nil {
			return
		}
		r.sched.MarkEntered(n)
		for _, h := range n.Hooks.Of(domain.HookBefore) {
			if err := r.runHook(ctx, step{node: n, hook: h}); err != nil {
				r.sched.Fail(n, err)
				r.contextFailure(ctx, n, domain.HookBefore, err)
				return
			}
		}
	}
}

// leaveContexts runs the after hooks of every context ex exhausted.
func (r *run) leaveContexts(ctx context.Context, ex *domain.Node) {
	for _, n := range r.sched.Leave(ex) {
		for _, h := range n.Hooks.Of(domain.HookAfter) {
			if err := r.runHook(ctx, step{node: n, hook: h}); err != nil {
				r.contextFailure(ctx, n, domain.HookAfter, err)
			}
		}
	}
}

// runHook executes one hook in a fresh environment scoped to its context.
func (r *run) runHook(ctx context.Context, s step) error {
	timeout := s.node.EffectiveTimeout(r.timeout)
	if s.hook.Timeout != nil {
		timeout = *s.hook.Timeout
	}
	err := settle(ctx, timeout, s.hook.Body, newEnv(s.node))
	if err == nil {
		return nil
	}
	r.logger.Warn("hook failed", "kind", s.hook.Kind, "address", s.node.Address.String(), "err", err)
	return &domain.HookError{
		Kind:        s.hook.Kind,
		Description: s.hook.Description,
		Address:     s.node.Address,
		Err:         err,
	}
}

func (r *run) record(ctx context.Context, ex *domain.Node, res domain.ExecutionResult) {
	r.report.Results = append(r.report.Results, res)
	r.logger.Debug("example finished", "address", res.Address.String(), "status", res.Status, "elapsed", res.Elapsed)
	if r.hooks.OnResult != nil {
		r.hooks.OnResult(ctx, &domain.ResultEvent{
			EventBase: domain.EventBase{Timestamp: r.now(), Type: domain.EventResult},
			Result:    res,
			Depth:     ex.Depth(),
		})
	}
}

func (r *run) contextFailure(ctx context.Context, n *domain.Node, kind domain.HookKind, err error) {
	f := domain.ContextFailure{
		Address:     n.Address,
		Description: n.FullDescription(),
		Hook:        kind,
		Failure:     err.Error(),
		Location:    n.Location,
		Err:         err,
	}
	r.report.ContextFailures = append(r.report.ContextFailures, f)
	if r.hooks.OnContextFailure != nil {
		r.hooks.OnContextFailure(ctx, &domain.ContextFailureEvent{
			EventBase: domain.EventBase{Timestamp: r.now(), Type: domain.EventContextFailure},
			Failure:   f,
			Depth:     max(n.Depth(), 0),
		})
	}
}

func (r *run) emitNode(ctx context.Context, typ domain.EventType, n *domain.Node, fn func(context.Context, *domain.NodeEvent)) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.NodeEvent{
		EventBase:   domain.EventBase{Timestamp: r.now(), Type: typ},
		Address:     n.Address,
		Description: n.Description,
		Kind:        n.Kind,
		Depth:       n.Depth(),
	})
}

// hookStatus maps a beforeEach/afterEach failure to the guarded example's status.
func hookStatus(err error) domain.Status {
	if errors.Is(err, domain.ErrTimeout) {
		return domain.StatusTimedOut
	}
	return domain.StatusErrored
}
