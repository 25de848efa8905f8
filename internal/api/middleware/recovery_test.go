package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/searches", http.NoBody)
	rec := httptest.NewRecorder()

	handler := Recovery(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.String())
}

func TestRecovery_Panic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		panicValue    any
		providedReqID string
		wantLogFields []string
	}{
		{
			name:       "string panic during poll",
			method:     http.MethodPost,
			path:       "/api/v1/searches/laptops/poll",
			panicValue: "nil listing",
			wantLogFields: []string{
				"panic recovered",
				"nil listing",
				"method=POST",
				"path=/api/v1/searches/laptops/poll",
			},
		},
		{
			name:       "error panic",
			method:     http.MethodPost,
			path:       "/api/v1/poll",
			panicValue: errors.New("watchlist closed"),
			wantLogFields: []string{
				"error=\"watchlist closed\"",
				"stack=",
			},
		},
		{
			name:          "request id from header is logged",
			method:        http.MethodGet,
			path:          "/api/v1/searches",
			panicValue:    42,
			providedReqID: "watch-req-9",
			wantLogFields: []string{
				"error=42",
				"request_id=watch-req-9",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var logBuf, panicBuf bytes.Buffer
			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.providedReqID != "" {
				req.Header.Set(requestIDHeader, tt.providedReqID)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			// Same order as the serve command: request log outermost.
			handler := RequestLog(slog.New(slog.NewTextHandler(&logBuf, nil)))(
				Recovery(slog.New(slog.NewTextHandler(&panicBuf, nil)))(
					func(_ echo.Context) error {
						panic(tt.panicValue)
					},
				),
			)

			require.NoError(t, handler(c))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, rec.Body.String(), "internal server error")

			panicLog := panicBuf.String()
			for _, field := range tt.wantLogFields {
				assert.Contains(t, panicLog, field)
			}

			reqID := rec.Header().Get(requestIDHeader)
			require.NotEmpty(t, reqID)
			assert.Contains(t, panicLog, "request_id="+reqID)
			assert.Contains(t, logBuf.String(), "request_id="+reqID)
			assert.Contains(t, logBuf.String(), "status=500")
		})
	}
}
