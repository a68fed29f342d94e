// Package maestro identifies the service for logging and diagnostics.
package maestro

const (
	// Name is the service name reported in logs and health responses
	Name = "maestro"

	// Version is the service version reported in logs and health responses
	Version = "0.3.0"
)
