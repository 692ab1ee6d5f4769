package reporter

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/aretw0/grove/pkg/domain"
)

// JSON writes one JSON object per event (JSON Lines), then a final summary line.
type JSON struct {
	mu      sync.Mutex
	Encoder *json.Encoder
	err     error
}

// NewJSON creates a JSON Lines reporter writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{Encoder: json.NewEncoder(w)}
}

// SummaryEvent is the last line written by the JSON reporter.
type SummaryEvent struct {
	domain.EventBase
	Counts          map[domain.Status]int `json:"counts"`
	ContextFailures int                   `json:"context_failures"`
	Seed            uint64                `json:"seed"`
	Random          bool                  `json:"random"`
	Shuffled        bool                  `json:"shuffled"`
	Elapsed         time.Duration         `json:"elapsed"`
	OK              bool                  `json:"ok"`
}

// EventSummary is the type of the final JSON line.
const EventSummary domain.EventType = "summary"

// Hooks writes one line per node, result and context failure.
func (j *JSON) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) { j.emit(e) },
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) { j.emit(e) },
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			j.emit(e)
		},
		OnContextFailure: func(_ context.Context, e *domain.ContextFailureEvent) {
			j.emit(e)
		},
	}
}

// Finish writes the summary line and returns the first write error seen during the run.
func (j *JSON) Finish(report *domain.Report) error {
	j.emit(&SummaryEvent{
		EventBase:       domain.EventBase{Timestamp: time.Now(), Type: EventSummary},
		Counts:          report.Counts(),
		ContextFailures: len(report.ContextFailures),
		Seed:            report.Seed,
		Random:          report.Random,
		Shuffled:        report.Shuffled,
		Elapsed:         report.Elapsed,
		OK:              report.OK(),
	})
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *JSON) emit(v any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.Encoder.Encode(v); err != nil && j.err == nil {
		j.err = err
	}
}
