package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// healthPaths are polled every few seconds by orchestrators. Only their
// first success and every failure are logged.
var healthPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that logs requests with structured fields.
// It generates a request ID if none is provided and propagates it through
// the response header and echo context.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var (
		mu          sync.Mutex
		healthLogged = make(map[string]bool, len(healthPaths))
	)

	shouldLog := func(path string, status int) (bool, slog.Level) {
		if _, health := healthPaths[path]; !health {
			return true, slog.LevelInfo
		}
		if status < 200 || status >= 300 {
			return true, slog.LevelWarn
		}
		mu.Lock()
		defer mu.Unlock()
		if healthLogged[path] {
			return false, slog.LevelInfo
		}
		healthLogged[path] = true
		return true, slog.LevelInfo
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			ok, level := shouldLog(path, status)
			if !ok {
				return err
			}

			log.Log(c.Request().Context(), level, "request",
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return err
		}
	}
}
