/*
Package grove is a nested, contextual test-specification engine.

Specifications are trees: contexts group lazily evaluated bindings and
setup/teardown hooks, examples are the executable leaves. Child contexts
override bindings of their ancestors without redeclaring anything else, and
every example gets a fresh binding environment, so memoized values never leak
from one example to the next.

# Concept

A run has two phases. Declarations build an immutable, addressed tree; the
engine then walks it depth-first (optionally in seeded random order), runs
the hooks each example needs, awaits its body under a timeout and reports a
result per example. Every node has a structural address such as [3:1:0], so a
failure can be reproduced on its own with the same hooks around it.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/grove"
		"github.com/aretw0/grove/pkg/domain"
		"github.com/aretw0/grove/pkg/dsl"
	)

	func main() {
		suite := grove.New()

		suite.Describe("Stack", func(c *dsl.C) {
			c.Subject(func() any { return []int{} })

			c.It("starts empty", func(ctx context.Context, r domain.Resolver) error {
				if s := domain.MustGet[[]int](r, "subject"); len(s) != 0 {
					return fmt.Errorf("expected empty stack, got %v", s)
				}
				return nil
			})
		})

		report, err := suite.Run(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(report.OK())
	}

The cmd/grove package and pkg/cli turn a suite into a command-line runner
with selection, random ordering, an HTTP API and an MCP server.
*/
package grove
