package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/trademe/internal/watch"
)

// Poller is the part of watch.Poller the search endpoints use.
type Poller interface {
	Status() []watch.Status
	Poll(ctx context.Context, name string) (int, error)
	PollAll(ctx context.Context) error
}

// NextPoller reports when the next scheduled poll is due.
type NextPoller interface {
	NextPoll() time.Time
}

// SearchesHandler exposes the saved searches and manual polls.
type SearchesHandler struct {
	poller    Poller
	scheduler NextPoller
}

// NewSearchesHandler creates a new SearchesHandler. scheduler may be nil.
func NewSearchesHandler(p Poller, scheduler NextPoller) *SearchesHandler {
	return &SearchesHandler{poller: p, scheduler: scheduler}
}

// SearchesResponse lists the saved searches.
type SearchesResponse struct {
	Searches []watch.Status `json:"searches"`
	NextPoll time.Time      `json:"next_poll,omitzero"`
}

// PollResponse is the outcome of a manual poll.
type PollResponse struct {
	Search string `json:"search"`
	New    int    `json:"new"`
}

// List returns the status of every saved search.
func (h *SearchesHandler) List(c echo.Context) error {
	resp := SearchesResponse{Searches: h.poller.Status()}
	if h.scheduler != nil {
		resp.NextPoll = h.scheduler.NextPoll()
	}
	return c.JSON(http.StatusOK, resp)
}

// Poll polls one saved search immediately.
func (h *SearchesHandler) Poll(c echo.Context) error {
	name := c.Param("name")
	n, err := h.poller.Poll(c.Request().Context(), name)
	switch {
	case errors.Is(err, watch.ErrUnknownSearch):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case err != nil:
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "poll failed: " + err.Error()})
	}
	return c.JSON(http.StatusOK, PollResponse{Search: name, New: n})
}

// PollAll polls every saved search immediately.
func (h *SearchesHandler) PollAll(c echo.Context) error {
	if err := h.poller.PollAll(c.Request().Context()); err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "poll failed: " + err.Error()})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "poll completed"})
}

// Register mounts all daemon routes on e.
func Register(e *echo.Echo, health *HealthHandler, searches *SearchesHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)

	v1 := e.Group("/api/v1")
	v1.GET("/searches", searches.List)
	v1.POST("/searches/:name/poll", searches.Poll)
	v1.POST("/poll", searches.PollAll)
}
