package api

type (
	// CommandRequest submits an intent for planning and execution
	CommandRequest struct {
		Intent Intent `json:"intent"`
	}

	// CommandResponse returns the plan that was built and the resulting log
	CommandResponse struct {
		Plan *Plan         `json:"plan"`
		Log  *ExecutionLog `json:"log"`
	}

	// PlanPreviewResponse returns the plan an intent would produce without
	// executing it
	PlanPreviewResponse struct {
		Plan *Plan `json:"plan"`
	}

	// ActionsListResponse lists the actions the registry can dispatch
	ActionsListResponse struct {
		Actions []Action `json:"actions"`
		Count   int      `json:"count"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Version string `json:"version"`
		Status  string `json:"status"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)
