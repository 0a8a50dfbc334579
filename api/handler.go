// Package api exposes the simulation runtime over HTTP.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/viant/simrun"
)

// Handler handles HTTP requests.
type Handler struct {
	runtime *simrun.Runtime
	version string
}

// NewHandler creates a new handler.
func NewHandler(runtime *simrun.Runtime, version string) *Handler {
	return &Handler{runtime: runtime, version: version}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/runs", h.StartRun)
	e.GET("/v1/runs", h.ListRuns)
	e.GET("/v1/runs/:run_id", h.GetRun)
	e.DELETE("/v1/runs/:run_id", h.CancelRun)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
