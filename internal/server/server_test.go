package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/workmesh/maestro"
	"github.com/workmesh/maestro/internal/engine"
	"github.com/workmesh/maestro/internal/engine/event"
	"github.com/workmesh/maestro/internal/planner"
	"github.com/workmesh/maestro/internal/server"
	"github.com/workmesh/maestro/pkg/api"
)

type testServerEnv struct {
	Server   *server.Server
	Registry *engine.Registry
	Hub      *event.Hub
}

func testServer(t *testing.T) *testServerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := engine.NewRegistry()
	hub := event.NewHub()
	t.Cleanup(hub.Close)

	eng := engine.New(reg, engine.WithEventHub(hub))
	return &testServerEnv{
		Server:   server.NewServer(planner.New(), eng, reg, hub),
		Registry: reg,
		Hub:      hub,
	}
}

func echoHandler(_ context.Context, args api.Args) (api.Args, error) {
	return args, nil
}

func postJSON(t *testing.T, router *gin.Engine, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	env := testServer(t)
	router := env.Server.SetupRoutes()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, app.Name, res.Service)
	assert.Equal(t, "ok", res.Status)
}

func TestPlanPreview(t *testing.T) {
	env := testServer(t)
	router := env.Server.SetupRoutes()

	w := postJSON(t, router, "/engine/plan", api.CommandRequest{
		Intent: api.Intent{
			Category: "generate-and-send-report",
			Parameters: api.Args{
				"recipient": "ops@example.com",
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res api.PlanPreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Plan)
	assert.Equal(t, 5, res.Plan.Len())
	assert.NotEmpty(t, res.Plan.ID)
}

func TestPlanPreviewMissingParam(t *testing.T) {
	env := testServer(t)
	router := env.Server.SetupRoutes()

	w := postJSON(t, router, "/engine/plan", api.CommandRequest{
		Intent: api.Intent{Category: "generate-and-send-report"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var res api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, res.Error, "recipient")
}

func TestPlanPreviewEmptyCategory(t *testing.T) {
	env := testServer(t)
	router := env.Server.SetupRoutes()

	w := postJSON(t, router, "/engine/plan", api.CommandRequest{
		Intent: api.Intent{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanPreviewInvalidBody(t *testing.T) {
	env := testServer(t)
	router := env.Server.SetupRoutes()

	req := httptest.NewRequest(
		"POST", "/engine/plan", bytes.NewReader([]byte("{not json")),
	)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommandExecutesPlan(t *testing.T) {
	env := testServer(t)
	require.NoError(t, env.Registry.Register("send_chat_message", echoHandler))
	router := env.Server.SetupRoutes()

	w := postJSON(t, router, "/engine/command", api.CommandRequest{
		Intent: api.Intent{
			Category: "notify-team",
			Parameters: api.Args{
				"message": "deploy done",
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res api.CommandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Log)
	assert.Equal(t, api.RunCompleted, res.Log.Status)
	require.Len(t, res.Log.Results, 1)
	assert.Equal(t, api.OutcomeSuccess, res.Log.Results[0].Outcome)
}

func TestCommandReportsFailureInLog(t *testing.T) {
	env := testServer(t)
	router := env.Server.SetupRoutes()

	// No handler registered: the step is skipped and the run still succeeds
	w := postJSON(t, router, "/engine/command", api.CommandRequest{
		Intent: api.Intent{
			Category: "notify-team",
			Parameters: api.Args{
				"message": "ping",
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res api.CommandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Log.Results, 1)
	assert.Equal(t, api.OutcomeSkipped, res.Log.Results[0].Outcome)
	assert.Equal(t, api.RunCompleted, res.Log.Status)
}

func TestListActions(t *testing.T) {
	env := testServer(t)
	require.NoError(t, env.Registry.Register("fetch_crm", echoHandler))
	require.NoError(t, env.Registry.Register("clean_data", echoHandler))
	router := env.Server.SetupRoutes()

	req := httptest.NewRequest("GET", "/engine/actions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var res api.ActionsListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []api.Action{"clean_data", "fetch_crm"}, res.Actions)
}

func TestCORSPreflight(t *testing.T) {
	env := testServer(t)
	router := env.Server.SetupRoutes()

	req := httptest.NewRequest("OPTIONS", "/engine/actions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
