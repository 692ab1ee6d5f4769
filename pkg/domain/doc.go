/*
Package domain contains the core domain models of the Grove specification engine.

It defines the context/example tree, lazy bindings, hooks, structural addresses
and execution results. The package is kept pure and free of I/O so the builder,
the runtime and every adapter can share the same vocabulary.

# Key Entities

  - Node: a context (grouping of bindings, hooks and children) or an example (leaf with a body).
  - Binding: a named value or thunk, resolved lazily along the execution path.
  - Hook: a before/after/beforeEach/afterEach block attached to a context.
  - Address: the structural position of a node, used for selective re-execution.
  - ExecutionResult / Report: what a run produced.
  - LifecycleHooks: the reporter callback surface (entered, left, result).
*/
package domain
