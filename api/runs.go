package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/service/dao"
	"github.com/viant/simrun/service/orchestrator"
)

// StartRunRequest is the request to start a run. Pool size and iterations are
// loosely typed so that "8" and 8 are both accepted; the config is either
// inlined or loaded from ConfigURL.
type StartRunRequest struct {
	PoolSize   interface{}      `json:"poolSize,omitempty"`
	Iterations interface{}      `json:"iterations"`
	Config     *model.SimConfig `json:"config,omitempty"`
	ConfigURL  string           `json:"configURL,omitempty"`
	Overrides  []string         `json:"overrides,omitempty"`
}

// StartRunResponse acknowledges a started run.
type StartRunResponse struct {
	RunID string `json:"runID"`
	State string `json:"state"`
}

// StartRun validates the request and starts the run in the background.
// POST /v1/runs
func (h *Handler) StartRun(c echo.Context) error {
	ctx := c.Request().Context()
	var req StartRunRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	config := req.Config
	if req.ConfigURL != "" {
		loaded, err := h.runtime.LoadConfig(ctx, req.ConfigURL, req.Overrides...)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		config = loaded
	}
	request, err := h.runtime.NewRequest(req.PoolSize, req.Iterations, config)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	// the run outlives the HTTP request
	handle, err := h.runtime.Start(context.WithoutCancel(ctx), request, orchestrator.Callbacks{
		OnError: func(err error) {
			log.Printf("api: run failed: %v", err)
		},
	})
	if err != nil {
		if errors.Is(err, orchestrator.ErrShutdown) {
			return errorJSON(c, http.StatusServiceUnavailable, err.Error())
		}
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusAccepted, &StartRunResponse{RunID: handle.ID, State: model.StateRunning})
}

// GetRun returns a run record.
// GET /v1/runs/:run_id
func (h *Handler) GetRun(c echo.Context) error {
	run, err := h.runtime.LookupRun(c.Request().Context(), c.Param("run_id"))
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) || errors.Is(err, dao.ErrInvalidID) {
			return errorJSON(c, http.StatusNotFound, "run not found")
		}
		log.Printf("api: failed to load run: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to load run")
	}
	return c.JSON(http.StatusOK, run)
}

// ListRuns lists run records, optionally filtered by ?state=a,b.
// GET /v1/runs
func (h *Handler) ListRuns(c echo.Context) error {
	var states []string
	if value := c.QueryParam("state"); value != "" {
		states = strings.Split(value, ",")
	}
	runs, err := h.runtime.ListRuns(c.Request().Context(), states...)
	if err != nil {
		log.Printf("api: failed to list runs: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list runs")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"runs": runs})
}

// CancelRun cancels an unresolved run.
// DELETE /v1/runs/:run_id
func (h *Handler) CancelRun(c echo.Context) error {
	runID := c.Param("run_id")
	if !h.runtime.CancelRun(runID) {
		return errorJSON(c, http.StatusNotFound, "run not found or already resolved")
	}
	return c.JSON(http.StatusAccepted, map[string]string{"runID": runID, "state": model.StateCanceled})
}
