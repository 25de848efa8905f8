package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/trademe/internal/api/handlers"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeAuth trademe.AuthState

func (f fakeAuth) State() trademe.AuthState { return trademe.AuthState(f) }

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(fakePinger{}, fakeAuth(trademe.Unauthenticated))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Healthz(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		auth       trademe.AuthState
		wantStatus int
		wantBody   string
	}{
		{
			name:       "returns 200 when store ping succeeds",
			auth:       trademe.Authenticated,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready","auth":"authenticated"}`,
		},
		{
			name:       "ready without an access token",
			auth:       trademe.Unauthenticated,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready","auth":"unauthenticated"}`,
		},
		{
			name:       "returns 503 when store ping fails",
			pingErr:    errors.New("connection refused"),
			auth:       trademe.Authenticated,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","auth":"authenticated"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewHealthHandler(fakePinger{err: tt.pingErr}, fakeAuth(tt.auth))

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.Readyz(c)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
