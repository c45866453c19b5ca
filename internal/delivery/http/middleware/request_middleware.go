// Package middleware holds the echo middleware of the dashboard server.
package middleware

import (
	"log/slog"
	"strings"
	"time"

	"assettrack/config"
	deliverycontext "assettrack/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestMiddleware assigns every request an id and a logger carrying it,
// and writes one access log line per request.
type RequestMiddleware struct {
	logger *slog.Logger
	debug  bool
}

// NewRequestMiddleware creates the request middleware.
func NewRequestMiddleware(logger *slog.Logger, cfg *config.Config) *RequestMiddleware {
	return &RequestMiddleware{
		logger: logger,
		debug:  cfg.Env.Debug,
	}
}

// Process must run before any handler that logs or calls the backend.
func (m *RequestMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		requestID := deliverycontext.SanitizeRequestID(req.Header.Get(deliverycontext.HeaderXRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

		reqLogger := m.logger.With(slog.String("request_id", requestID))
		ctx := deliverycontext.WithRequestID(req.Context(), requestID)
		ctx = deliverycontext.WithLogger(ctx, reqLogger)
		c.SetRequest(req.WithContext(ctx))

		start := time.Now()
		err := next(c)
		if err != nil {
			// Commit the error response now so the logged status is the real one.
			c.Error(err)
		}
		m.access(c, reqLogger, start, err)

		return nil
	}
}

func (m *RequestMiddleware) access(c echo.Context, logger *slog.Logger, start time.Time, err error) {
	req, res := c.Request(), c.Response()
	if !m.debug && res.Status < 400 && strings.HasSuffix(req.URL.Path, "/health") {
		return
	}

	latency := time.Since(start)
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("uri", req.URL.Path),
		slog.Int("status", res.Status),
		slog.Int64("bytes_out", res.Size),
		slog.Duration("latency", latency),
	}
	if m.debug {
		attrs = append(attrs,
			slog.String("query", req.URL.RawQuery),
			slog.String("remote_ip", c.RealIP()),
			slog.String("user_agent", req.UserAgent()),
		)
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	level := slog.LevelInfo
	switch {
	case res.Status >= 500:
		level = slog.LevelError
	case res.Status >= 400:
		level = slog.LevelWarn
	}
	logger.LogAttrs(req.Context(), level, "HTTP request", attrs...)
}
