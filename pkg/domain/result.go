package domain

import "time"

// Status is the outcome of one example.
type Status string

const (
	StatusPassed   Status = "passed"
	StatusFailed   Status = "failed"
	StatusErrored  Status = "errored"
	StatusTimedOut Status = "timedOut"
	StatusPending  Status = "pending"
)

// Statuses lists every status in reporting order.
var Statuses = []Status{StatusPassed, StatusFailed, StatusErrored, StatusTimedOut, StatusPending}

// ExecutionResult is the record of one example execution.
type ExecutionResult struct {
	Address         Address       `json:"address"`
	Description     string        `json:"description"`
	FullDescription string        `json:"full_description"`
	Status          Status        `json:"status"`
	Failure         string        `json:"failure,omitempty"`
	Elapsed         time.Duration `json:"elapsed"`
	Location        Location      `json:"location"`

	Err error `json:"-"`
}

// Failed reports whether the result counts against the run.
func (r ExecutionResult) Failed() bool {
	return r.Status == StatusFailed || r.Status == StatusErrored || r.Status == StatusTimedOut
}

// ContextFailure is recorded against a context whose before or after hooks failed.
type ContextFailure struct {
	Address     Address  `json:"address"`
	Description string   `json:"description"`
	Hook        HookKind `json:"hook"`
	Failure     string   `json:"failure"`
	Location    Location `json:"location"`

	Err error `json:"-"`
}

// Report aggregates the results of one run.
type Report struct {
	Results         []ExecutionResult `json:"results"`
	ContextFailures []ContextFailure  `json:"context_failures,omitempty"`
	Seed            uint64            `json:"seed"`
	// Random is the process-wide default the run started with.
	Random bool `json:"random"`
	// Shuffled is set once any context's children were permuted.
	Shuffled bool          `json:"shuffled"`
	Started  time.Time     `json:"started"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Randomized reports whether the order of the run depended on Seed.
func (r *Report) Randomized() bool {
	return r.Random || r.Shuffled
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Counts returns the number of results per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Failures returns the results that count against the run.
func (r *Report) Failures() []ExecutionResult {
	var out []ExecutionResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether no example failed and no context hook failed.
func (r *Report) OK() bool {
	return len(r.Failures()) == 0 && len(r.ContextFailures) == 0
}

// Result returns the result recorded for addr.
func (r *Report) Result(addr Address) (ExecutionResult, bool) {
	for _, res := range r.Results {
		if res.Address.Equal(addr) {
			return res, true
		}
	}
	return ExecutionResult{}, false
}
