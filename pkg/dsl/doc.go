/*
Package dsl provides the Go DSL for declaring Grove specification trees.

Contexts group lazy bindings, hooks and children; examples are the executable
leaves. Instead of an implicit "currently open context", every context
callback receives an explicit handle (*C) and declarations made on it append to
that context in call order. Callbacks run immediately, so a subtree is complete
when Describe returns.

Example usage:

	b := dsl.New()

	b.Describe("Stack", func(c *dsl.C) {
		c.Set("items", []int{})
		c.Subject(func(r domain.Resolver) (any, error) {
			items := domain.MustGet[[]int](r, "items")
			return NewStack(items...), nil
		})

		c.It("is empty", func(ctx context.Context, r domain.Resolver) error {
			s := domain.MustGet[*Stack](r, "subject")
			if s.Len() != 0 {
				return fmt.Errorf("expected empty stack, got %d items", s.Len())
			}
			return nil
		})

		c.Context("with items", func(c *dsl.C) {
			c.Set("items", []int{1, 2}) // overrides only "items"

			c.It("is not empty", func(ctx context.Context, r domain.Resolver) error {
				// ...
				return nil
			})
		})
	})

	tree, err := b.Build()

Shared groups are registered with SharedExamples / SharedContext and included
with ItBehavesLike (a new nested context) or IncludeContext (spliced into the
including context).
*/
package dsl
