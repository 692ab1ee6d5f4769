package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter      EventType = "node_enter"
	EventNodeLeave      EventType = "node_leave"
	EventResult         EventType = "result"
	EventContextFailure EventType = "context_failure"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents entry into or exit from a node.
type NodeEvent struct {
	EventBase
	Address     Address  `json:"address"`
	Description string   `json:"description"`
	Kind        NodeKind `json:"kind"`
	Depth       int      `json:"depth"`
}

// ResultEvent carries the result of one example.
type ResultEvent struct {
	EventBase
	Result ExecutionResult `json:"result"`
	Depth  int             `json:"depth"`
}

// ContextFailureEvent carries a before/after hook failure recorded against a context.
type ContextFailureEvent struct {
	EventBase
	Failure ContextFailure `json:"failure"`
	Depth   int            `json:"depth"`
}

// LifecycleHooks defines the reporter callbacks invoked by the engine.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnNodeEnter      func(context.Context, *NodeEvent)
	OnNodeLeave      func(context.Context, *NodeEvent)
	OnResult         func(context.Context, *ResultEvent)
	OnContextFailure func(context.Context, *ContextFailureEvent)
}
