// Package handlers implements the HTTP handlers of the watch daemon.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/trademe/pkg/trademe"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuthStater reports the handshake state of the API connection.
type AuthStater interface {
	State() trademe.AuthState
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	store Pinger
	auth  AuthStater
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(s Pinger, auth AuthStater) *HealthHandler {
	return &HealthHandler{store: s, auth: auth}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if the store is reachable, 503 otherwise. The body
// also carries the authentication state so operators can tell whether
// member endpoints will work.
func (h *HealthHandler) Readyz(c echo.Context) error {
	resp := ReadyResponse{Status: "ready", Auth: h.auth.State().String()}
	if err := h.store.Ping(c.Request().Context()); err != nil {
		resp.Status = "unavailable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
