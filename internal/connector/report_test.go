package connector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"

	_ "gocloud.dev/blob/memblob"

	"github.com/workmesh/maestro/internal/connector"
	"github.com/workmesh/maestro/internal/planner"
	"github.com/workmesh/maestro/pkg/api"
)

func TestGenerateReportWritesArtifact(t *testing.T) {
	r, ws, ctx := newCRMEnv(t)
	require.NoError(t, connector.NewTransform(ws).Register(r))

	reports, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reports.Close() })
	require.NoError(
		t, connector.NewReport(reports, "reports/", ws).Register(r),
	)

	_, err = invoke(t, r, ctx, planner.ActionFetchCRM, api.Args{})
	require.NoError(t, err)
	_, err = invoke(t, r, ctx, planner.ActionCleanData, api.Args{})
	require.NoError(t, err)
	_, err = invoke(t, r, ctx, planner.ActionAnalyze, api.Args{})
	require.NoError(t, err)

	payload, err := invoke(t, r, ctx, planner.ActionGenerateReport, api.Args{
		"title": "Q3 Pipeline",
	})
	require.NoError(t, err)

	key := payload.GetString("artifact_key", "")
	require.NotEmpty(t, key)
	assert.Contains(t, key, "reports/q3-pipeline-")
	assert.Positive(t, payload.GetInt("bytes", 0))

	data, err := reports.ReadAll(ctx, key)
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, "Q3 Pipeline")
	assert.Contains(t, body, "Total after cleaning: 3")
	assert.Contains(t, body, "active: 2")
	assert.Contains(t, body, "Revenue: 2400.00")
}

func TestGenerateReportWithoutAnalyze(t *testing.T) {
	r, ws, ctx := newCRMEnv(t)

	reports, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reports.Close() })
	require.NoError(
		t, connector.NewReport(reports, "reports/", ws).Register(r),
	)

	_, err = invoke(t, r, ctx, planner.ActionFetchCRM, api.Args{})
	require.NoError(t, err)

	// snapshot plans skip the analyze step; the report still renders
	payload, err := invoke(
		t, r, ctx, planner.ActionGenerateReport, api.Args{},
	)
	require.NoError(t, err)

	data, err := reports.ReadAll(ctx, payload.GetString("artifact_key", ""))
	require.NoError(t, err)

	assert.Contains(t, string(data), "CRM Report")
	assert.Contains(t, string(data), "Records: 5")
	assert.NotContains(t, string(data), "Total after cleaning")
}

func TestGenerateReportWithoutRecordsFails(t *testing.T) {
	ws := connector.NewWorkspace()
	ctx := api.WithRunID(t.Context(), api.NewRunID())

	reports, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reports.Close() })

	r := newRegistryWith(t, connector.NewReport(reports, "reports/", ws))
	_, err = invoke(t, r, ctx, planner.ActionGenerateReport, api.Args{})
	assert.ErrorIs(t, err, connector.ErrWorkspaceEmpty)
}
