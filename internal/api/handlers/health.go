// Package handlers implements HTTP handlers for the watcher API.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/tgtg-watcher/internal/store"
)

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	store   store.Store
	session SessionState
}

// NewHealthHandler creates a new HealthHandler. When sess is non-nil the
// process is only ready while the session holds a token.
func NewHealthHandler(s store.Store, sess SessionState) *HealthHandler {
	return &HealthHandler{store: s, session: sess}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if the store is reachable and the session is
// authenticated, 503 otherwise.
//
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}

	if h.session == nil {
		return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
	}
	if !h.session.Snapshot().Authenticated() {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{
			Status:  "unavailable",
			Session: "unauthenticated",
		})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready", Session: "authenticated"})
}
