package dsl_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/grove/pkg/domain"
	"github.com/aretw0/grove/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Structure(t *testing.T) {
	b := dsl.New()
	b.Describe("Stack", func(c *dsl.C) {
		c.Subject(func() any { return []int{} })
		c.It("starts empty", dsl.Noop)
		c.Context("with one item", func(c *dsl.C) {
			c.Set("item", 1)
			c.BeforeEach(dsl.Noop, dsl.Label("push"))
			c.Example("is not empty", dsl.Noop)
			c.Pending("pops")
		})
	})
	b.It("top level", dsl.Noop)

	tree, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 6, tree.Len())
	require.Len(t, tree.Root.Children, 2)

	stack := tree.Root.Children[0]
	assert.Equal(t, domain.KindContext, stack.Kind)
	assert.Equal(t, domain.Address{0}, stack.Address)
	sub, ok := stack.Binding(domain.SubjectName)
	require.True(t, ok)
	assert.True(t, sub.Lazy())

	nested, err := tree.Lookup(domain.Address{0, 1})
	require.NoError(t, err)
	assert.Equal(t, "with one item", nested.Description)
	require.Len(t, nested.Hooks.BeforeEach, 1)
	assert.Equal(t, "push", nested.Hooks.BeforeEach[0].Description)
	item, ok := nested.Binding("item")
	require.True(t, ok)
	assert.False(t, item.Lazy())
	assert.Equal(t, 1, item.Value)

	pending, err := tree.Lookup(domain.Address{0, 1, 1})
	require.NoError(t, err)
	assert.True(t, pending.Pending())
	assert.Equal(t, "Stack with one item pops", pending.FullDescription())

	assert.Len(t, tree.Examples(), 4)
}

func TestBuilder_RecordsDeclarationSites(t *testing.T) {
	b := dsl.New()
	b.Describe("located", func(c *dsl.C) {
		c.It("here", dsl.Noop)
	})

	tree, err := b.Build()
	require.NoError(t, err)

	ctx := tree.Root.Children[0]
	ex := ctx.Children[0]
	assert.Equal(t, "builder_test.go", filepath.Base(ctx.Location.File))
	assert.Equal(t, "builder_test.go", filepath.Base(ex.Location.File))
	assert.NotEqual(t, ctx.Location.Line, ex.Location.Line)

	found, ok := tree.Locate("pkg/dsl/builder_test.go", ex.Location.Line)
	require.True(t, ok)
	assert.Same(t, ex, found)
}

func TestBuilder_SetOverwritesInPlace(t *testing.T) {
	b := dsl.New()
	b.Set("a", 1)
	b.Set("b", 2)
	b.Set("a", 3)

	tree, err := b.Build()
	require.NoError(t, err)

	require.Len(t, tree.Root.Bindings, 2)
	assert.Equal(t, "a", tree.Root.Bindings[0].Name)
	assert.Equal(t, 3, tree.Root.Bindings[0].Value)
}

func TestBuilder_Options(t *testing.T) {
	b := dsl.New()
	b.Describe("slow", func(c *dsl.C) {
		c.It("fast", dsl.Noop, dsl.Options(map[string]any{"timeout": "250ms"}))
		c.It("numeric", dsl.Noop, dsl.Options(map[string]any{"timeout": 40}))
	}, dsl.Timeout(time.Second), dsl.Random(true))

	tree, err := b.Build()
	require.NoError(t, err)

	slow := tree.Root.Children[0]
	require.NotNil(t, slow.Options.Timeout)
	assert.Equal(t, time.Second, *slow.Options.Timeout)
	assert.True(t, slow.EffectiveRandom(false))

	assert.Equal(t, 250*time.Millisecond, slow.Children[0].EffectiveTimeout(0))
	assert.Equal(t, 40*time.Millisecond, slow.Children[1].EffectiveTimeout(0))
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		declare func(b *dsl.Builder)
		want    error
	}{
		{
			name:    "negative timeout",
			declare: func(b *dsl.Builder) { b.It("x", dsl.Noop, dsl.Timeout(-time.Second)) },
			want:    domain.ErrMalformedOptions,
		},
		{
			name:    "unknown option key",
			declare: func(b *dsl.Builder) { b.Describe("x", nil, dsl.Options(map[string]any{"retries": 3})) },
			want:    domain.ErrMalformedOptions,
		},
		{
			name:    "random on an example",
			declare: func(b *dsl.Builder) { b.It("x", dsl.Noop, dsl.Random(true)) },
			want:    domain.ErrMalformedOptions,
		},
		{
			name:    "binding named like the vocabulary",
			declare: func(b *dsl.Builder) { b.Set("describe", 1) },
			want:    domain.ErrBindingCollision,
		},
		{
			name:    "unknown shared examples",
			declare: func(b *dsl.Builder) { b.ItBehavesLike("ghost") },
			want:    domain.ErrUnknownSharedDefinition,
		},
		{
			name: "shared kind mismatch",
			declare: func(b *dsl.Builder) {
				b.SharedContext("ctx", func(*dsl.C, ...any) {})
				b.ItBehavesLike("ctx")
			},
			want: domain.ErrUnknownSharedDefinition,
		},
		{
			name: "duplicate shared definition",
			declare: func(b *dsl.Builder) {
				b.SharedExamples("twice", func(*dsl.C, ...any) {})
				b.SharedContext("twice", func(*dsl.C, ...any) {})
			},
			want: domain.ErrDuplicateSharedDefinition,
		},
		{
			name: "handle used after its callback",
			declare: func(b *dsl.Builder) {
				var leaked *dsl.C
				b.Describe("outer", func(c *dsl.C) { leaked = c })
				leaked.It("late", dsl.Noop)
			},
			want: domain.ErrBuilderClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := dsl.New()
			tt.declare(b)

			tree, err := b.Build()
			assert.Nil(t, tree)
			assert.ErrorIs(t, err, tt.want)

			var be *domain.BuildError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, "builder_test.go", filepath.Base(be.Location.File))
		})
	}
}

func TestBuilder_ExternalNames(t *testing.T) {
	b := dsl.New(dsl.WithExternalNames("db"))
	b.Set("db", nil)
	b.Set("cache", nil)

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrBindingCollision)
	assert.Contains(t, err.Error(), `"db"`)
	assert.NotContains(t, err.Error(), `"cache"`)
}

func TestBuilder_SelfInclusion(t *testing.T) {
	b := dsl.New()
	b.SharedExamples("recursive", func(c *dsl.C, _ ...any) {
		c.ItBehavesLike("recursive")
	})
	b.ItBehavesLike("recursive")

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "includes itself")
}

func TestBuilder_NilHook(t *testing.T) {
	b := dsl.New()
	b.BeforeEach(nil)

	_, err := b.Build()
	assert.Error(t, err)
}

func TestBuilder_BuildIsIdempotent(t *testing.T) {
	b := dsl.New()
	b.It("x", func(context.Context, domain.Resolver) error { return nil })

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)
	assert.Same(t, first, second)

	b.It("after build", dsl.Noop)
	_, err = b.Build()
	assert.ErrorIs(t, err, domain.ErrBuilderClosed)
}
