package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// NodeKind distinguishes groupings from executable leaves.
type NodeKind string

const (
	// KindContext groups bindings, hooks and children.
	KindContext NodeKind = "context"
	// KindExample is a leaf holding one executable body.
	KindExample NodeKind = "example"
)

// SubjectName is the reserved binding name used by Subject.
const SubjectName = "subject"

// Location is the source position where a node or hook was declared.
type Location struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Options are the per-node settings. A nil field inherits from the nearest ancestor.
type Options struct {
	// Timeout bounds every body and hook of the node. Zero means unlimited.
	Timeout *time.Duration `json:"timeout,omitempty"`
	// Random shuffles the node's children at run time.
	Random *bool `json:"random,omitempty"`
}

// Binding is a named value declared on a context.
// Either Thunk is set (lazy, memoized per execution) or Value is used as-is.
type Binding struct {
	Name  string
	Value any
	Thunk Thunk
}

// Lazy reports whether the binding is produced by a thunk.
func (b *Binding) Lazy() bool { return b.Thunk != nil }

// HookKind is one of the four hook kinds.
type HookKind string

const (
	HookBefore     HookKind = "before"
	HookAfter      HookKind = "after"
	HookBeforeEach HookKind = "beforeEach"
	HookAfterEach  HookKind = "afterEach"
)

// Hook is a setup or teardown block registered on a context.
type Hook struct {
	Kind        HookKind
	Description string
	Timeout     *time.Duration
	Body        Body
	Location    Location
}

// Hooks holds the hook lists of one context, each in registration order.
type Hooks struct {
	Before     []*Hook
	After      []*Hook
	BeforeEach []*Hook
	AfterEach  []*Hook
}

// Add appends h to the list matching its kind.
func (h *Hooks) Add(hook *Hook) {
	switch hook.Kind {
	case HookBefore:
		h.Before = append(h.Before, hook)
	case HookAfter:
		h.After = append(h.After, hook)
	case HookBeforeEach:
		h.BeforeEach = append(h.BeforeEach, hook)
	case HookAfterEach:
		h.AfterEach = append(h.AfterEach, hook)
	}
}

// Of returns the hooks of the given kind.
func (h *Hooks) Of(kind HookKind) []*Hook {
	switch kind {
	case HookBefore:
		return h.Before
	case HookAfter:
		return h.After
	case HookBeforeEach:
		return h.BeforeEach
	case HookAfterEach:
		return h.AfterEach
	}
	return nil
}

// Node is a context or an example in the specification tree.
type Node struct {
	ID          int      `json:"id"`
	Kind        NodeKind `json:"kind"`
	Description string   `json:"description"`
	Address     Address  `json:"address"`
	Location    Location `json:"location"`

	// Shared is the name of the shared example group that produced this context, if any.
	Shared string `json:"shared,omitempty"`

	Options  Options `json:"options"`
	Children []*Node `json:"children,omitempty"`

	Parent   *Node      `json:"-"`
	Bindings []*Binding `json:"-"`
	Hooks    Hooks      `json:"-"`
	Body     Body       `json:"-"`
}

// IsExample reports whether the node is a leaf example.
func (n *Node) IsExample() bool { return n.Kind == KindExample }

// IsRoot reports whether the node is the synthetic tree root.
func (n *Node) IsRoot() bool { return n.Parent == nil }

// Pending reports whether the node is an example without a body.
func (n *Node) Pending() bool { return n.IsExample() && n.Body == nil }

// Binding returns the binding declared locally under name.
func (n *Node) Binding(name string) (*Binding, bool) {
	for _, b := range n.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// SetBinding declares b on the node, replacing a previous declaration of the same name in place.
func (n *Node) SetBinding(b *Binding) {
	for i, existing := range n.Bindings {
		if existing.Name == b.Name {
			n.Bindings[i] = b
			return
		}
	}
	n.Bindings = append(n.Bindings, b)
}

// Path returns the nodes from the root down to n, both included.
func (n *Node) Path() []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FullDescription joins the descriptions from the first top-level ancestor down to n.
func (n *Node) FullDescription() string {
	var parts []string
	for _, p := range n.Path() {
		if p.IsRoot() || p.Description == "" {
			continue
		}
		parts = append(parts, p.Description)
	}
	return strings.Join(parts, " ")
}

// Depth is the number of ancestors between n and the root (top-level nodes have depth 0).
func (n *Node) Depth() int {
	return len(n.Address) - 1
}

// EffectiveTimeout returns the nearest explicit timeout on n or its ancestors, else def.
func (n *Node) EffectiveTimeout(def time.Duration) time.Duration {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Options.Timeout != nil {
			return *cur.Options.Timeout
		}
	}
	return def
}

// EffectiveRandom returns the nearest explicit random setting on n or its ancestors, else def.
func (n *Node) EffectiveRandom(def bool) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Options.Random != nil {
			return *cur.Options.Random
		}
	}
	return def
}

// Tree is a built specification tree with addresses assigned.
type Tree struct {
	Root  *Node
	index map[string]*Node
	size  int
}

// NewTree assigns IDs and structural addresses below root and indexes every node.
func NewTree(root *Node) *Tree {
	t := &Tree{Root: root, index: make(map[string]*Node)}
	root.Address = Address{}
	root.ID = 0
	next := 1
	var assign func(n *Node)
	assign = func(n *Node) {
		for i, child := range n.Children {
			child.Parent = n
			child.Address = n.Address.Child(i)
			child.ID = next
			next++
			t.index[child.Address.String()] = child
			assign(child)
		}
	}
	t.index[root.Address.String()] = root
	assign(root)
	t.size = next - 1
	return t
}

// Len returns the number of nodes below the root.
func (t *Tree) Len() int { return t.size }

// Lookup returns the node at addr.
func (t *Tree) Lookup(addr Address) (*Node, error) {
	n, ok := t.index[addr.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}
	return n, nil
}

// Walk visits every node below the root in declaration order.
// Returning an error from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node) error) error {
	var walk func(n *Node) error
	walk = func(n *Node) error {
		for _, child := range n.Children {
			if err := fn(child); err != nil {
				return err
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t.Root)
}

// Examples returns every example in declaration order.
func (t *Tree) Examples() []*Node {
	var out []*Node
	_ = t.Walk(func(n *Node) error {
		if n.IsExample() {
			out = append(out, n)
		}
		return nil
	})
	return out
}

// Locate resolves a "<file>:<line>" reference to the innermost node declared in
// file at or before line. File matching is by whole path elements, so callers
// may pass relative paths.
func (t *Tree) Locate(file string, line int) (*Node, bool) {
	var best *Node
	file = filepath.ToSlash(file)
	_ = t.Walk(func(n *Node) error {
		declared := filepath.ToSlash(n.Location.File)
		if declared == "" || !(declared == file || strings.HasSuffix(declared, "/"+file)) {
			return nil
		}
		if n.Location.Line > line {
			return nil
		}
		if best == nil || n.Location.Line >= best.Location.Line {
			best = n
		}
		return nil
	})
	return best, best != nil
}

// Resolve maps a selector to the address of the node it designates.
// Line selectors go through Locate; both forms fail with ErrUnknownAddress.
func (t *Tree) Resolve(s Selector) (Address, error) {
	if s.HasAddress() {
		if _, err := t.Lookup(s.Address); err != nil {
			return nil, err
		}
		return s.Address, nil
	}
	n, ok := t.Locate(s.File, s.Line)
	if !ok {
		return nil, fmt.Errorf("%w: nothing declared at or before %s:%d", ErrUnknownAddress, s.File, s.Line)
	}
	return n.Address, nil
}

// ResolveAll parses and resolves every selector string.
func (t *Tree) ResolveAll(selectors []string) ([]Address, error) {
	addrs := make([]Address, 0, len(selectors))
	for _, raw := range selectors {
		sel, err := ParseSelector(raw)
		if err != nil {
			return nil, err
		}
		addr, err := t.Resolve(sel)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
