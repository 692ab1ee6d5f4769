package grove

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/grove/internal/logging"
	"github.com/aretw0/grove/internal/runtime"
	"github.com/aretw0/grove/pkg/domain"
	"github.com/aretw0/grove/pkg/dsl"
	"github.com/aretw0/grove/pkg/reporter"
)

// Version is the released version of Grove.
const Version = "0.1.0"

// Suite is the high-level entry point for the Grove library.
// It embeds the tree builder, so contexts, examples, bindings, hooks and
// shared definitions are declared directly on it, and it runs the built tree.
type Suite struct {
	*dsl.Builder

	Name string

	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	random   bool
	seed     uint64
	timeout  time.Duration
	external []string

	// mu serializes runs and configuration changes.
	mu      sync.Mutex
	buildMu sync.Mutex
}

// Option defines a functional option for configuring the Suite.
type Option func(*Suite)

// WithName labels the suite in logs and adapters.
func WithName(name string) Option {
	return func(s *Suite) {
		s.Name = name
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suite) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers reporter hooks called on every run.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Suite) {
		s.hooks = hooks
	}
}

// WithRandom sets the process-wide random ordering default.
func WithRandom(random bool) Option {
	return func(s *Suite) {
		s.random = random
	}
}

// WithSeed fixes the seed used for random ordering. Zero picks one per run.
func WithSeed(seed uint64) Option {
	return func(s *Suite) {
		s.seed = seed
	}
}

// WithTimeout sets the default timeout of bodies and hooks. Zero means unlimited.
func WithTimeout(d time.Duration) Option {
	return func(s *Suite) {
		s.timeout = d
	}
}

// WithExternalNames reserves names that bindings may not use.
// It only has an effect when passed to New.
func WithExternalNames(names ...string) Option {
	return func(s *Suite) {
		s.external = append(s.external, names...)
	}
}

// New creates an empty suite.
func New(opts ...Option) *Suite {
	s := &Suite{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.Name != "" {
		s.logger = s.logger.With("suite", s.Name)
	}
	s.Builder = dsl.New(dsl.WithExternalNames(s.external...))
	return s
}

// Configure applies options after construction, e.g. command-line overrides.
func (s *Suite) Configure(opts ...Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
}

// Tree builds the suite (once) and returns the addressed tree.
// Declaring anything after the first call is a build error.
func (s *Suite) Tree() (*domain.Tree, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	tree, err := s.Build()
	if err != nil {
		s.logger.Error("build failed", "err", err)
		return nil, err
	}
	return tree, nil
}

// Lookup returns the node at addr.
func (s *Suite) Lookup(addr domain.Address) (*domain.Node, error) {
	tree, err := s.Tree()
	if err != nil {
		return nil, err
	}
	return tree.Lookup(addr)
}

// Run executes the examples under addrs, or every example when none is given.
// Failures of examples and hooks are reported in the returned report; the
// error is reserved for build errors, unknown addresses and cancellation.
func (s *Suite) Run(ctx context.Context, addrs ...domain.Address) (*domain.Report, error) {
	return s.RunWithHooks(ctx, domain.LifecycleHooks{}, addrs...)
}

// RunWithHooks is Run with extra reporter hooks for this run only.
func (s *Suite) RunWithHooks(ctx context.Context, hooks domain.LifecycleHooks, addrs ...domain.Address) (*domain.Report, error) {
	tree, err := s.Tree()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	engine := runtime.NewEngine(tree,
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(reporter.Combine(s.hooks, hooks)),
		runtime.WithRandom(s.random),
		runtime.WithSeed(s.seed),
		runtime.WithDefaultTimeout(s.timeout),
	)
	return engine.Run(ctx, addrs...)
}
