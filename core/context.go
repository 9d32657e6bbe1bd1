package core

import "context"

// Context keys for assessment options
type contextKey string

const runIDKey contextKey = "runID"

// withRunID stores the history run that assessments should be recorded under.
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// runIDFromContext returns the history run id, or 0 when assessments are not tracked.
func runIDFromContext(ctx context.Context) int64 {
	runID, _ := ctx.Value(runIDKey).(int64)
	return runID
}
