package engine

import (
	"context"
	"time"
)

// TimeManager tracks the wall-clock budget of one search. The budget is only
// consulted before a root candidate is searched; a subtree that has started
// always runs to completion.
type TimeManager struct {
	budget    time.Duration
	startTime time.Time
}

// NewTimeManager creates a time manager. A zero budget never expires.
func NewTimeManager(budget time.Duration) *TimeManager {
	return &TimeManager{budget: budget}
}

// Init starts the clock.
func (tm *TimeManager) Init() {
	tm.startTime = time.Now()
}

// Elapsed returns the time elapsed since the search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Budget returns the configured budget.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// Expired returns true once the elapsed time exceeds the budget.
func (tm *TimeManager) Expired() bool {
	return tm.budget > 0 && tm.Elapsed() > tm.budget
}

// ShouldStop returns true when no new root work may start, either because
// the budget is spent or because ctx is done.
func (tm *TimeManager) ShouldStop(ctx context.Context) bool {
	return tm.Expired() || ctx.Err() != nil
}
