package api

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type (
	// RunID is a unique identifier for a single execution of a plan
	RunID string

	// PlanID is a unique identifier for a plan
	PlanID string
)

// InvalidIDChars matches characters not permitted in run and plan IDs. Valid
// characters are: letters, digits, underscore, dot, hyphen, plus, space
var InvalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_.\-+ ]`)

// NewRunID generates a fresh run identifier
func NewRunID() RunID {
	return RunID(uuid.New().String())
}

// NewPlanID generates a fresh plan identifier
func NewPlanID() PlanID {
	return PlanID(uuid.New().String())
}

// SanitizeID lowercases an ID, removes invalid characters, replaces spaces
// with hyphens, and trims leading and trailing hyphens
func SanitizeID[T ~string](id T) T {
	lower := strings.ToLower(string(id))
	sanitized := InvalidIDChars.ReplaceAllString(lower, "")
	sanitized = strings.ReplaceAll(sanitized, " ", "-")
	return T(strings.Trim(sanitized, "-"))
}
