package api

import "time"

type (
	// EventType identifies a run lifecycle event
	EventType string

	// Event is the envelope published by the engine for each run and step
	// transition, consumed by WebSocket clients
	Event struct {
		Type      EventType `json:"type"`
		RunID     RunID     `json:"run_id"`
		PlanID    PlanID    `json:"plan_id"`
		Timestamp time.Time `json:"timestamp"`
		Data      any       `json:"data,omitempty"`
	}

	// RunStartedEvent is emitted when a run begins
	RunStartedEvent struct {
		Category Category `json:"category"`
		Steps    int      `json:"steps"`
	}

	// StepCompletedEvent is emitted after each attempted step
	StepCompletedEvent struct {
		Result StepResult `json:"result"`
	}

	// RunFinishedEvent is emitted when a run ends for any reason
	RunFinishedEvent struct {
		Status   RunStatus `json:"status"`
		Attempts int       `json:"attempts"`
	}
)

const (
	EventTypeRunStarted    EventType = "run_started"
	EventTypeStepCompleted EventType = "step_completed"
	EventTypeRunFinished   EventType = "run_finished"
)
