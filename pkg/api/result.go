package api

import (
	"context"
	"time"
)

type (
	// Outcome classifies what happened to a single attempted step
	Outcome string

	// RunStatus classifies how a run as a whole ended
	RunStatus string

	// Handler is the single capability connectors implement: given a
	// parameter mapping, produce a payload or fail
	Handler func(context.Context, Args) (Args, error)

	// StepResult captures the outcome of one attempted step. Exactly one is
	// produced per step the engine dispatches
	StepResult struct {
		Step     Step          `json:"step"`
		Outcome  Outcome       `json:"outcome"`
		Payload  Args          `json:"payload,omitempty"`
		Error    string        `json:"error,omitempty"`
		Reason   string        `json:"reason,omitempty"`
		Duration time.Duration `json:"duration"`
	}

	// ExecutionLog is the ordered record of per-step outcomes for one run,
	// truncated at the first failure or cancellation. Append-only while the
	// run is live, immutable once returned to the caller
	ExecutionLog struct {
		RunID      RunID        `json:"run_id"`
		PlanID     PlanID       `json:"plan_id"`
		Status     RunStatus    `json:"status"`
		Results    []StepResult `json:"results"`
		StartedAt  time.Time    `json:"started_at"`
		FinishedAt time.Time    `json:"finished_at"`
	}
)

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeSkipped Outcome = "skipped"

	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// SuccessResult records a completed step with its payload
func SuccessResult(step Step, payload Args, d time.Duration) StepResult {
	return StepResult{
		Step:     step,
		Outcome:  OutcomeSuccess,
		Payload:  payload,
		Duration: d,
	}
}

// FailureResult records a step whose handler reported an error
func FailureResult(step Step, err error, d time.Duration) StepResult {
	return StepResult{
		Step:     step,
		Outcome:  OutcomeFailure,
		Error:    err.Error(),
		Duration: d,
	}
}

// SkippedResult records a step that was never dispatched
func SkippedResult(step Step, reason string) StepResult {
	return StepResult{
		Step:    step,
		Outcome: OutcomeSkipped,
		Reason:  reason,
	}
}

// Succeeded returns true if every attempted step completed
func (l *ExecutionLog) Succeeded() bool {
	return l.Status == RunCompleted
}
