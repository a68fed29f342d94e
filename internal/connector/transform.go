package connector

import (
	"context"
	"fmt"

	"github.com/workmesh/maestro/internal/engine"
	"github.com/workmesh/maestro/internal/planner"
	"github.com/workmesh/maestro/pkg/api"
)

type (
	// Transform provides the in-process data shaping handlers that sit
	// between the CRM fetch and report generation
	Transform struct {
		ws *Workspace
	}

	// Summary is the aggregate the analyze step derives from cleaned records
	Summary struct {
		Total    int            `json:"total"`
		Dropped  int            `json:"dropped"`
		ByStatus map[string]int `json:"by_status"`
		Revenue  float64        `json:"revenue"`
	}
)

// Fields a record must carry to survive cleaning
var requiredFields = []string{"id", "name"}

// NewTransform creates the transform connector
func NewTransform(ws *Workspace) *Transform {
	return &Transform{ws: ws}
}

func (t *Transform) Name() string {
	return "transform"
}

// Register contributes the clean_data and analyze handlers
func (t *Transform) Register(r *engine.Registry) error {
	if err := r.Register(planner.ActionCleanData, t.clean); err != nil {
		return err
	}
	return r.Register(planner.ActionAnalyze, t.analyze)
}

// clean drops records missing required fields and dedupes by id, keeping
// the first occurrence
func (t *Transform) clean(
	ctx context.Context, _ api.Args,
) (api.Args, error) {
	records, err := recordsFrom(ctx, t.ws)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	cleaned := make([]Record, 0, len(records))
	for _, rec := range records {
		if !hasRequiredFields(rec) {
			continue
		}
		// ids may arrive as JSON strings or numbers; key the dedupe on a
		// canonical form so distinct numeric ids never collapse
		id := fmt.Sprint(rec["id"])
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		cleaned = append(cleaned, rec)
	}

	if err := t.ws.Put(ctx, wsRecords, cleaned); err != nil {
		return nil, err
	}

	return api.Args{
		"kept":    len(cleaned),
		"dropped": len(records) - len(cleaned),
	}, nil
}

// analyze aggregates the cleaned records into a summary for reporting
func (t *Transform) analyze(
	ctx context.Context, _ api.Args,
) (api.Args, error) {
	records, err := recordsFrom(ctx, t.ws)
	if err != nil {
		return nil, err
	}

	summary := &Summary{ByStatus: map[string]int{}}
	summary.Total = len(records)
	for _, rec := range records {
		if status, ok := rec["status"].(string); ok {
			summary.ByStatus[status]++
		}
		if value, ok := rec["value"].(float64); ok {
			summary.Revenue += value
		}
	}

	if err := t.ws.Put(ctx, wsSummary, summary); err != nil {
		return nil, err
	}

	return api.Args{
		"total":    summary.Total,
		"statuses": len(summary.ByStatus),
		"revenue":  summary.Revenue,
	}, nil
}

func hasRequiredFields(rec Record) bool {
	for _, field := range requiredFields {
		val, ok := rec[field]
		if !ok {
			return false
		}
		if s, ok := val.(string); ok && s == "" {
			return false
		}
	}
	return true
}
