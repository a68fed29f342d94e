package api

import (
	"errors"
	"maps"
)

type (
	// Action identifies a registered handler capability
	Action string

	// Step is one unit of work in a plan: an action identifier plus the
	// parameters bound for it. Steps are immutable once placed in a Plan
	Step struct {
		Action Action `json:"action"`
		Params Args   `json:"params"`
		Index  int    `json:"index"`
	}

	// Plan is the ordered sequence of steps produced for a single intent.
	// A Plan is never mutated after creation; re-planning produces a new one
	Plan struct {
		ID       PlanID   `json:"id"`
		Category Category `json:"category"`
		Digest   string   `json:"digest"`
		Steps    []Step   `json:"steps"`
	}
)

var ErrActionEmpty = errors.New("step action empty")

// NewStep creates a step at the given position, cloning the parameter map so
// later changes to the source cannot reach the plan
func NewStep(action Action, params Args, index int) Step {
	return Step{
		Action: action,
		Params: maps.Clone(params),
		Index:  index,
	}
}

// Validate checks that the step carries an action identifier
func (s *Step) Validate() error {
	if s.Action == "" {
		return ErrActionEmpty
	}
	return nil
}

// Len returns the number of steps in the plan
func (p *Plan) Len() int {
	return len(p.Steps)
}

// IsEmpty returns true for a zero-length plan, the planner's answer to an
// unrecognized category
func (p *Plan) IsEmpty() bool {
	return len(p.Steps) == 0
}
