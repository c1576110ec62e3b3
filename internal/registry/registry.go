// Package registry tracks every launched job run until its result arrives
// or its deadline expires.
package registry

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// OutstandingRun is a single launched-but-not-yet-reported job execution.
type OutstandingRun struct {
	JobName    string
	RunID      string
	ValidUntil time.Time
}

// Notifier is the narrow interface the sweeper needs from internal/notify.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}

// Registry maps run_id to OutstandingRun. All operations are safe for
// concurrent use; critical sections are kept short, and the sweeper never
// holds the lock while notifying.
type Registry struct {
	mu   sync.Mutex
	runs map[string]OutstandingRun
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{runs: make(map[string]OutstandingRun)}
}

// Add registers a newly launched run with an absolute deadline of
// now+timeout. A duplicate run_id simply replaces the earlier entry; the
// dispatcher guarantees run_id uniqueness so this should not occur in
// practice.
func (r *Registry) Add(jobName, runID string, timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[runID] = OutstandingRun{
		JobName:    jobName,
		RunID:      runID,
		ValidUntil: time.Now().Add(timeout),
	}
}

// MarkReturned removes the entry for run_id. If no such entry exists, this
// logs the inconsistency and returns — it is a reported but non-fatal
// condition (a late or spurious result).
func (r *Registry) MarkReturned(ctx context.Context, runID string) {
	r.mu.Lock()
	_, ok := r.runs[runID]
	if ok {
		delete(r.runs, runID)
	}
	r.mu.Unlock()

	if !ok {
		slog.ErrorContext(ctx, "mark_returned for unknown run", "run_id", runID)
	}
}

// ClearAll drops every outstanding entry without notification. Used by
// reload, which abandons runs in flight.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = make(map[string]OutstandingRun)
}

// Len reports the number of outstanding runs, for tests and diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

const (
	// SweepInterval is how often the sweeper looks for overdue runs.
	SweepInterval = 10 * time.Minute
	// SweepJitter bounds the random delay added to each sweep to avoid a
	// thundering herd across multiple gamayun instances sharing a clock.
	SweepJitter = 2 * time.Second
)

// RunSweeper runs the periodic overdue-run eviction loop until ctx is
// cancelled. Every SweepInterval (±SweepJitter), it collects every run whose
// ValidUntil has passed, removes them from the registry, and — after
// releasing the lock — notifies the operator once per overdue run.
func (r *Registry) RunSweeper(ctx context.Context, notifier Notifier) {
	for {
		jitter := time.Duration(rand.Int64N(int64(2*SweepJitter))) - SweepJitter
		timer := time.NewTimer(SweepInterval + jitter)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			r.sweepOnce(ctx, notifier)
		}
	}
}

func (r *Registry) sweepOnce(ctx context.Context, notifier Notifier) {
	now := time.Now()

	r.mu.Lock()
	var overdue []OutstandingRun
	for id, run := range r.runs {
		if run.ValidUntil.Before(now) {
			overdue = append(overdue, run)
			delete(r.runs, id)
		}
	}
	r.mu.Unlock()

	for _, run := range overdue {
		notifier.Notify(ctx,
			"Gamayun Overdue Job for "+run.JobName,
			"Job with name "+run.JobName+" and run ID "+run.RunID+" is overdue.",
		)
	}
}
