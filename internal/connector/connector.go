// Package connector provides the builtin integrations that register action
// handlers with the engine: CRM fetch, data shaping, report generation, and
// notification delivery. Every connector receives its dependencies at
// construction and narrows its parameter map into a typed structure before
// doing any work
package connector

import (
	"context"
	"errors"
	"fmt"

	"github.com/workmesh/maestro/internal/engine"
	"github.com/workmesh/maestro/pkg/api"
)

// Connector is one integration contributing handlers to the registry
type Connector interface {
	Name() string
	Register(r *engine.Registry) error
}

var ErrBadParams = errors.New("invalid step parameters")

// Workspace keys shared by the pipeline connectors
const (
	wsRecords  api.Name = "records"
	wsSummary  api.Name = "summary"
	wsArtifact api.Name = "artifact"
)

// badParam reports a malformed or missing parameter with enough context to
// diagnose it from the execution log alone
func badParam(action api.Action, name api.Name, detail string) error {
	return fmt.Errorf("%w: %s: %s (%s)", ErrBadParams, action, name, detail)
}

// recordsFrom narrows the working record set held in the workspace
func recordsFrom(ctx context.Context, ws *Workspace) ([]Record, error) {
	val, err := ws.Get(ctx, wsRecords)
	if err != nil {
		return nil, err
	}
	records, ok := val.([]Record)
	if !ok {
		return nil, fmt.Errorf("%w: workspace records", ErrBadParams)
	}
	return records, nil
}
