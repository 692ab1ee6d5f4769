package runtime

import (
	"github.com/aretw0/grove/pkg/domain"
)

// step is one hook invocation together with the context that declared it.
type step struct {
	node *domain.Node
	hook *domain.Hook
}

// Scheduler tracks, across one run, which contexts have been entered, which
// have failed their before hooks and how many runnable examples each context
// still has to execute. before hooks fire the first time execution enters a
// context, after hooks the last time it leaves; contexts without runnable
// examples never fire either.
type Scheduler struct {
	remaining map[*domain.Node]int
	entered   map[*domain.Node]bool
	failed    map[*domain.Node]error
}

// NewScheduler prepares a scheduler for the given runnable examples.
func NewScheduler(runnable []*domain.Node) *Scheduler {
	s := &Scheduler{
		remaining: make(map[*domain.Node]int),
		entered:   make(map[*domain.Node]bool),
		failed:    make(map[*domain.Node]error),
	}
	for _, ex := range runnable {
		for cur := ex.Parent; cur != nil; cur = cur.Parent {
			s.remaining[cur]++
		}
	}
	return s
}

// Enter returns the ancestors of ex that have not been entered yet, outer to inner.
func (s *Scheduler) Enter(ex *domain.Node) []*domain.Node {
	var out []*domain.Node
	for _, n := range ancestors(ex) {
		if !s.entered[n] {
			out = append(out, n)
		}
	}
	return out
}

// MarkEntered records that n's before hooks ran (or were attempted).
func (s *Scheduler) MarkEntered(n *domain.Node) { s.entered[n] = true }

// Fail records that a before hook of n failed. Every example beneath n is blocked.
func (s *Scheduler) Fail(n *domain.Node, err error) { s.failed[n] = err }

// Blocked returns the before-hook failure of the outermost failed context
// among n and its ancestors, or nil.
func (s *Scheduler) Blocked(n *domain.Node) error {
	var blocked error
	for cur := n; cur != nil; cur = cur.Parent {
		if err, ok := s.failed[cur]; ok {
			blocked = err
		}
	}
	return blocked
}

// Leave accounts for ex having run and returns the entered contexts it
// exhausted, inner to outer. Their after hooks are due.
func (s *Scheduler) Leave(ex *domain.Node) []*domain.Node {
	var out []*domain.Node
	for cur := ex.Parent; cur != nil; cur = cur.Parent {
		s.remaining[cur]--
		if s.remaining[cur] == 0 && s.entered[cur] {
			out = append(out, cur)
		}
	}
	return out
}

// beforeEachSteps returns the beforeEach hooks guarding ex, outermost context first.
func beforeEachSteps(ex *domain.Node) []step {
	var out []step
	for _, n := range ancestors(ex) {
		for _, h := range n.Hooks.Of(domain.HookBeforeEach) {
			out = append(out, step{node: n, hook: h})
		}
	}
	return out
}

// afterEachSteps returns the afterEach hooks guarding ex, closest context first.
func afterEachSteps(ex *domain.Node) []step {
	var out []step
	for cur := ex.Parent; cur != nil; cur = cur.Parent {
		for _, h := range cur.Hooks.Of(domain.HookAfterEach) {
			out = append(out, step{node: cur, hook: h})
		}
	}
	return out
}

// ancestors returns the contexts from the root down to ex's parent.
func ancestors(ex *domain.Node) []*domain.Node {
	path := ex.Path()
	return path[:len(path)-1]
}
