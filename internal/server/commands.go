package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workmesh/maestro/pkg/api"
)

// handleCommand plans an intent and immediately executes the plan, returning
// both the plan and the full execution log. Execution errors never become
// HTTP errors: the log carries the per-step trace and the overall status
func (s *Server) handleCommand(c *gin.Context) {
	var req api.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  "invalid request body: " + err.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}

	plan, err := s.planner.Build(&req.Intent)
	if err != nil {
		s.planError(c, err)
		return
	}

	log := s.engine.Run(c.Request.Context(), plan)
	c.JSON(http.StatusOK, api.CommandResponse{
		Plan: plan,
		Log:  log,
	})
}

// handlePlanPreview builds a plan without executing it
func (s *Server) handlePlanPreview(c *gin.Context) {
	var req api.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  "invalid request body: " + err.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}

	plan, err := s.planner.Build(&req.Intent)
	if err != nil {
		s.planError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PlanPreviewResponse{Plan: plan})
}

func (s *Server) listActions(c *gin.Context) {
	actions := s.registry.Actions()
	c.JSON(http.StatusOK, api.ActionsListResponse{
		Actions: actions,
		Count:   len(actions),
	})
}

// planError maps planning failures onto HTTP statuses: a PlanningError is
// the client's fault, anything else is ours
func (s *Server) planError(c *gin.Context, err error) {
	var pe *api.PlanningError
	status := http.StatusInternalServerError
	if errors.As(err, &pe) || errors.Is(err, api.ErrCategoryEmpty) {
		status = http.StatusBadRequest
	}
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}
