package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/workmesh/maestro/pkg/api"
)

// Workspace holds the working state a pipeline accumulates across its steps,
// scoped by run so concurrent runs never see each other's data. Steps share
// state through here rather than through globals; the engine only tags the
// handler context with the run ID
type Workspace struct {
	runs map[api.RunID]api.Args
	mu   sync.RWMutex
}

var (
	ErrNoRunScope     = errors.New("handler context has no run scope")
	ErrWorkspaceEmpty = errors.New("workspace value not present")
)

// NewWorkspace creates an empty workspace
func NewWorkspace() *Workspace {
	return &Workspace{runs: map[api.RunID]api.Args{}}
}

// Put stores a value under the context's run scope
func (w *Workspace) Put(ctx context.Context, name api.Name, value any) error {
	runID, ok := api.RunIDFrom(ctx)
	if !ok {
		return ErrNoRunScope
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	scope, ok := w.runs[runID]
	if !ok {
		scope = api.Args{}
		w.runs[runID] = scope
	}
	scope[name] = value
	return nil
}

// Get retrieves a value from the context's run scope
func (w *Workspace) Get(ctx context.Context, name api.Name) (any, error) {
	runID, ok := api.RunIDFrom(ctx)
	if !ok {
		return nil, ErrNoRunScope
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	value, ok := w.runs[runID][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceEmpty, name)
	}
	return value, nil
}

// Purge discards everything stored for a run. Callers invoke it once the
// run's log has been returned
func (w *Workspace) Purge(runID api.RunID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.runs, runID)
}
