package api

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type (
	// Category identifies a recognized task template
	Category string

	// Intent is the structured description of what workflow to run, produced
	// upstream of the engine. Natural-language understanding is not this
	// module's concern; an Intent arrives already parsed
	Intent struct {
		Category   Category `json:"category"`
		Parameters Args     `json:"parameters"`
	}

	// PlanningError reports a recognized category whose intent is missing
	// required parameters. It is raised before any Step is constructed
	PlanningError struct {
		Category Category
		Missing  []Name
	}
)

var ErrCategoryEmpty = errors.New("intent category empty")

// Validate checks that the intent is structurally usable
func (i *Intent) Validate() error {
	if i.Category == "" {
		return ErrCategoryEmpty
	}
	return nil
}

// NewPlanningError creates a PlanningError for the given category with the
// missing parameter names sorted for stable output
func NewPlanningError(category Category, missing []Name) *PlanningError {
	slices.Sort(missing)
	return &PlanningError{Category: category, Missing: missing}
}

func (e *PlanningError) Error() string {
	names := make([]string, len(e.Missing))
	for i, n := range e.Missing {
		names[i] = string(n)
	}
	return fmt.Sprintf("category %q missing required parameters: %s",
		e.Category, strings.Join(names, ", "))
}
