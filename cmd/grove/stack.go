package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/pkg/domain"
	"github.com/aretw0/grove/pkg/dsl"
)

var errFull = errors.New("stack is full")

// stack is the system under test.
type stack struct {
	items []int
	limit int
}

func (s *stack) push(v int) error {
	if len(s.items) == s.limit {
		return errFull
	}
	s.items = append(s.items, v)
	return nil
}

func (s *stack) pop() (int, bool) {
	if len(s.items) == 0 {
		return 0, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

func declareShared(s *grove.Suite) {
	s.SharedExamples("a stack holding", func(c *dsl.C, args ...any) {
		want := args[0].(int)

		c.It(fmt.Sprintf("has %d items", want), func(_ context.Context, r domain.Resolver) error {
			st, err := domain.Get[*stack](r, domain.SubjectName)
			if err != nil {
				return err
			}
			if len(st.items) != want {
				return fmt.Errorf("len = %d, want %d", len(st.items), want)
			}
			return nil
		})
	})

	s.SharedContext("filled to the limit", func(c *dsl.C, args ...any) {
		c.Subject(func(r domain.Resolver) (any, error) {
			limit, err := domain.Get[int](r, "limit")
			if err != nil {
				return nil, err
			}
			st := &stack{limit: limit}
			for i := range limit {
				if err := st.push(i); err != nil {
					return nil, err
				}
			}
			return st, nil
		})
	})
}

func declareStack(s *grove.Suite) {
	s.Describe("stack", func(c *dsl.C) {
		c.Set("limit", 3)
		c.Subject(func(r domain.Resolver) (any, error) {
			limit, err := domain.Get[int](r, "limit")
			if err != nil {
				return nil, err
			}
			return &stack{limit: limit}, nil
		})
		c.BeforeEach(func(_ context.Context, r domain.Resolver) error {
			if domain.MustGet[int](r, "limit") <= 0 {
				return errors.New("limit must be positive")
			}
			return nil
		}, dsl.Label("validate limit"))

		c.Context("when empty", func(c *dsl.C) {
			c.ItBehavesLike("a stack holding", 0)

			c.It("pops nothing", func(_ context.Context, r domain.Resolver) error {
				if _, ok := domain.MustGet[*stack](r, domain.SubjectName).pop(); ok {
					return errors.New("popped from an empty stack")
				}
				return nil
			})
		})

		c.Context("when full", func(c *dsl.C) {
			c.IncludeContext("filled to the limit")

			c.ItBehavesLike("a stack holding", 3)

			c.It("rejects a push", func(_ context.Context, r domain.Resolver) error {
				err := domain.MustGet[*stack](r, domain.SubjectName).push(9)
				if !errors.Is(err, errFull) {
					return fmt.Errorf("push returned %v", err)
				}
				return nil
			})

			c.Context("with a larger limit", func(c *dsl.C) {
				c.Set("limit", 5)

				c.ItBehavesLike("a stack holding", 5)
			})
		})

		c.Context("under load", func(c *dsl.C) {
			c.It("pushes many items quickly", func(ctx context.Context, r domain.Resolver) error {
				st := &stack{limit: 100_000}
				for i := range st.limit {
					if err := ctx.Err(); err != nil {
						return err
					}
					if err := st.push(i); err != nil {
						return err
					}
				}
				return nil
			})

			c.Pending("shrinks its backing array")
		}, dsl.Timeout(time.Second), dsl.Random(true))
	})
}
