package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Tree {
	timeout := 50 * time.Millisecond
	random := true
	root := &Node{Kind: KindContext}
	outer := &Node{
		Kind: KindContext, Description: "Outer",
		Location: Location{File: "/src/specs/outer_test.go", Line: 10},
		Options:  Options{Timeout: &timeout, Random: &random},
	}
	inner := &Node{
		Kind: KindContext, Description: "inner",
		Location: Location{File: "/src/specs/outer_test.go", Line: 14},
	}
	ex := &Node{
		Kind: KindExample, Description: "works",
		Location: Location{File: "/src/specs/outer_test.go", Line: 15},
	}
	other := &Node{
		Kind: KindExample, Description: "elsewhere",
		Location: Location{File: "/src/specs/other_test.go", Line: 3},
	}
	inner.Children = []*Node{ex}
	outer.Children = []*Node{inner}
	root.Children = []*Node{outer, other}
	return NewTree(root)
}

func TestNewTree_AssignsAddresses(t *testing.T) {
	tree := sampleTree()

	assert.Equal(t, 4, tree.Len())

	ex, err := tree.Lookup(Address{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, "works", ex.Description)
	assert.Equal(t, "Outer inner works", ex.FullDescription())
	assert.Equal(t, 2, ex.Depth())
	assert.Len(t, ex.Path(), 4)
	assert.True(t, ex.Pending())

	root, err := tree.Lookup(Address{})
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	_, err = tree.Lookup(Address{5})
	assert.ErrorIs(t, err, ErrUnknownAddress)
}

func TestNode_EffectiveOptions(t *testing.T) {
	tree := sampleTree()
	ex, _ := tree.Lookup(Address{0, 0, 0})
	other, _ := tree.Lookup(Address{1})

	assert.Equal(t, 50*time.Millisecond, ex.EffectiveTimeout(time.Second))
	assert.True(t, ex.EffectiveRandom(false))
	assert.Equal(t, time.Second, other.EffectiveTimeout(time.Second))
	assert.False(t, other.EffectiveRandom(false))
}

func TestTree_Locate(t *testing.T) {
	tree := sampleTree()

	n, ok := tree.Locate("specs/outer_test.go", 14)
	require.True(t, ok)
	assert.Equal(t, "inner", n.Description)

	n, ok = tree.Locate("outer_test.go", 99)
	require.True(t, ok)
	assert.Equal(t, "works", n.Description)

	_, ok = tree.Locate("outer_test.go", 2)
	assert.False(t, ok)

	_, ok = tree.Locate("missing_test.go", 10)
	assert.False(t, ok)

	// "r_test.go" is a suffix of "other_test.go" but not a path element.
	_, ok = tree.Locate("r_test.go", 20)
	assert.False(t, ok)

	n, ok = tree.Locate("/src/specs/other_test.go", 3)
	require.True(t, ok)
	assert.Equal(t, "elsewhere", n.Description)
}

func TestReport_Counts(t *testing.T) {
	r := &Report{Results: []ExecutionResult{
		{Address: Address{0}, Status: StatusPassed},
		{Address: Address{1}, Status: StatusFailed},
		{Address: Address{2}, Status: StatusPending},
		{Address: Address{3}, Status: StatusTimedOut},
	}}

	assert.Equal(t, 1, r.Count(StatusPassed))
	assert.Equal(t, 0, r.Counts()[StatusErrored])
	assert.Len(t, r.Failures(), 2)
	assert.False(t, r.OK())

	res, ok := r.Result(Address{3})
	require.True(t, ok)
	assert.Equal(t, StatusTimedOut, res.Status)
}

func TestHooks_AddAndOf(t *testing.T) {
	var h Hooks
	first := &Hook{Kind: HookBeforeEach, Description: "first"}
	second := &Hook{Kind: HookBeforeEach, Description: "second"}
	after := &Hook{Kind: HookAfter}
	h.Add(first)
	h.Add(after)
	h.Add(second)

	assert.Equal(t, []*Hook{first, second}, h.Of(HookBeforeEach))
	assert.Equal(t, []*Hook{after}, h.Of(HookAfter))
	assert.Empty(t, h.Of(HookBefore))
	assert.Empty(t, h.Of(HookAfterEach))
	assert.Nil(t, h.Of(HookKind("around")))
}

func TestHookError(t *testing.T) {
	err := &HookError{Kind: HookBefore, Description: "seed", Address: Address{1}, Err: ErrTimeout}

	assert.ErrorIs(t, err, ErrHookFailure)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, `before hook "seed" at [1]: timeout`, err.Error())
}

func TestTree_ResolveAll(t *testing.T) {
	tree := sampleTree()

	addrs, err := tree.ResolveAll([]string{"outer_test.go[0:0]", "[1]", "specs/outer_test.go:15"})
	require.NoError(t, err)
	assert.Equal(t, []Address{{0, 0}, {1}, {0, 0, 0}}, addrs)

	_, err = tree.ResolveAll([]string{"[7]"})
	assert.ErrorIs(t, err, ErrUnknownAddress)

	_, err = tree.ResolveAll([]string{"outer_test.go:1"})
	assert.ErrorIs(t, err, ErrUnknownAddress)

	_, err = tree.ResolveAll([]string{"nonsense"})
	assert.Error(t, err)
}
