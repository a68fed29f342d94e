package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/workmesh/maestro/pkg/api"
)

// Registry maps action identifiers to their handlers. Registration is
// strict: a second registration for the same action fails rather than
// silently replacing the first. Resolution is a pure lookup, safe for
// concurrent use while registration is confined to startup
type Registry struct {
	handlers map[api.Action]api.Handler
	mu       sync.RWMutex
}

var (
	ErrActionExists = errors.New("action already registered")
	ErrHandlerNil   = errors.New("handler is nil")
)

// NewRegistry creates an empty action handler registry
func NewRegistry() *Registry {
	return &Registry{handlers: map[api.Action]api.Handler{}}
}

// Register binds a handler to an action identifier
func (r *Registry) Register(action api.Action, handler api.Handler) error {
	if action == "" {
		return api.ErrActionEmpty
	}
	if handler == nil {
		return fmt.Errorf("%w: %s", ErrHandlerNil, action)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[action]; ok {
		return fmt.Errorf("%w: %s", ErrActionExists, action)
	}
	r.handlers[action] = handler
	return nil
}

// Resolve returns the handler for an action, if one is registered
func (r *Registry) Resolve(action api.Action) (api.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[action]
	return handler, ok
}

// Actions returns the registered action identifiers in sorted order
func (r *Registry) Actions() []api.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	actions := make([]api.Action, 0, len(r.handlers))
	for action := range r.handlers {
		actions = append(actions, action)
	}
	slices.Sort(actions)
	return actions
}
