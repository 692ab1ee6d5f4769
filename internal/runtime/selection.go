package runtime

import (
	"fmt"

	"github.com/aretw0/grove/pkg/domain"
)

// selection restricts a run to the subtrees rooted at the given addresses.
// An empty selection covers the whole tree.
type selection []domain.Address

func newSelection(tree *domain.Tree, addrs []domain.Address) (selection, error) {
	for _, a := range addrs {
		if _, err := tree.Lookup(a); err != nil {
			return nil, fmt.Errorf("invalid selection: %w", err)
		}
	}
	return selection(addrs), nil
}

// covers reports whether addr lies inside a selected subtree.
func (s selection) covers(addr domain.Address) bool {
	if len(s) == 0 {
		return true
	}
	for _, root := range s {
		if addr.HasPrefix(root) {
			return true
		}
	}
	return false
}

// census counts, for every context, the selected examples beneath it.
type census struct {
	// visible counts selected examples, pending ones included.
	visible map[*domain.Node]int
	// runnable lists selected examples that have a body, in declaration order.
	runnable []*domain.Node
}

func takeCensus(tree *domain.Tree, sel selection) *census {
	c := &census{visible: make(map[*domain.Node]int)}
	_ = tree.Walk(func(n *domain.Node) error {
		if !n.IsExample() || !sel.covers(n.Address) {
			return nil
		}
		for cur := n; cur != nil; cur = cur.Parent {
			c.visible[cur]++
		}
		if !n.Pending() {
			c.runnable = append(c.runnable, n)
		}
		return nil
	})
	return c
}
