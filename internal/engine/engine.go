// Package engine executes plans against a registry of action handlers
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workmesh/maestro/internal/engine/event"
	"github.com/workmesh/maestro/pkg/api"
	"github.com/workmesh/maestro/pkg/log"
)

type (
	// Engine runs plans strictly in order against a shared registry. A
	// single Engine may execute independent plans concurrently; each run
	// owns its plan and log, and the registry is the only shared state
	Engine struct {
		registry    *Registry
		hub         *event.Hub
		stepTimeout time.Duration
	}

	// Option configures an Engine
	Option func(*Engine)
)

const skipReasonUnsupported = "unsupported action"

// WithStepTimeout bounds each handler invocation. Zero disables the bound.
// The source system ran handlers without a deadline; this is an enhancement,
// and an overrun is treated like any other handler failure
func WithStepTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.stepTimeout = d
	}
}

// WithEventHub publishes run and step lifecycle events to the hub
func WithEventHub(hub *event.Hub) Option {
	return func(e *Engine) {
		e.hub = hub
	}
}

// New creates an engine dispatching to the given registry
func New(registry *Registry, opts ...Option) *Engine {
	e := &Engine{registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the plan's steps in order and returns the log of everything
// attempted. Run never returns an error: a missing handler records a Skipped
// result and execution continues, a handler error records a Failure result
// and aborts the run, and cancellation between steps stops dispatch with the
// run tagged cancelled. All observable side effects belong to the handlers;
// the engine itself never retries
func (e *Engine) Run(ctx context.Context, plan *api.Plan) *api.ExecutionLog {
	l := &api.ExecutionLog{
		RunID:     api.NewRunID(),
		PlanID:    plan.ID,
		Status:    api.RunCompleted,
		Results:   make([]api.StepResult, 0, len(plan.Steps)),
		StartedAt: time.Now(),
	}

	e.publish(api.EventTypeRunStarted, l, &api.RunStartedEvent{
		Category: plan.Category,
		Steps:    len(plan.Steps),
	})

	ctx = api.WithRunID(ctx, l.RunID)

	for _, step := range plan.Steps {
		if ctx.Err() != nil {
			l.Status = api.RunCancelled
			break
		}

		res := e.runStep(ctx, l.RunID, step)
		l.Results = append(l.Results, res)
		e.publish(api.EventTypeStepCompleted, l, &api.StepCompletedEvent{
			Result: res,
		})

		if res.Outcome == api.OutcomeFailure {
			if ctx.Err() != nil {
				l.Status = api.RunCancelled
			} else {
				l.Status = api.RunFailed
			}
			break
		}
	}

	l.FinishedAt = time.Now()
	e.publish(api.EventTypeRunFinished, l, &api.RunFinishedEvent{
		Status:   l.Status,
		Attempts: len(l.Results),
	})

	slog.Info("Run finished",
		log.RunID(l.RunID),
		log.PlanID(plan.ID),
		log.Status(l.Status),
		slog.Int("attempted", len(l.Results)),
		slog.Int("planned", len(plan.Steps)))
	return l
}

func (e *Engine) runStep(
	ctx context.Context, runID api.RunID, step api.Step,
) api.StepResult {
	handler, ok := e.registry.Resolve(step.Action)
	if !ok {
		slog.Debug("Skipping unsupported action",
			log.RunID(runID),
			log.Action(step.Action),
			slog.Int("index", step.Index))
		return api.SkippedResult(step, skipReasonUnsupported)
	}

	payload, d, err := e.invoke(ctx, handler, step.Params)
	if err != nil {
		slog.Warn("Step failed",
			log.RunID(runID),
			log.Action(step.Action),
			slog.Int("index", step.Index),
			log.Error(err))
		return api.FailureResult(step, err, d)
	}
	return api.SuccessResult(step, payload, d)
}

// invoke dispatches a single handler call, bounding it with the configured
// step timeout. Handler panics surface as failures so one bad connector
// cannot take down unrelated runs
func (e *Engine) invoke(
	ctx context.Context, handler api.Handler, params api.Args,
) (payload api.Args, d time.Duration, err error) {
	if e.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.stepTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		d = time.Since(start)
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	payload, err = handler(ctx, params)
	return payload, d, err
}

func (e *Engine) publish(
	typ api.EventType, l *api.ExecutionLog, data any,
) {
	if e.hub == nil {
		return
	}
	e.hub.Publish(typ, l.RunID, l.PlanID, data)
}
