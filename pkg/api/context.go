package api

import "context"

type runIDKey struct{}

// WithRunID returns a context carrying the run identifier. The engine tags
// each handler invocation so connectors can scope shared resources to the
// run without cross-talk between concurrent runs
func WithRunID(ctx context.Context, id RunID) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom extracts the run identifier from a handler context
func RunIDFrom(ctx context.Context) (RunID, bool) {
	id, ok := ctx.Value(runIDKey{}).(RunID)
	return id, ok
}
