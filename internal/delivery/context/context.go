// Package context carries request-scoped values (request id, logger) from the
// HTTP edge down to the use cases and the backend client.
package context

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is the header a request id travels in, both to the
// dashboard and on to the asset backend.
const HeaderXRequestID = "X-Request-Id"

const maxRequestIDLength = 128

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// WithRequestID returns a copy of ctx carrying requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestIDFromContext returns the request id in ctx, or "".
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// RequestID returns the request id of an echo request, or "".
func RequestID(c echo.Context) string {
	return GetRequestIDFromContext(c.Request().Context())
}

// SanitizeRequestID accepts a client supplied id when it is short and
// printable; otherwise it returns "".
func SanitizeRequestID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxRequestIDLength {
		return ""
	}
	if strings.IndexFunc(id, func(r rune) bool { return !unicode.IsPrint(r) || unicode.IsSpace(r) }) >= 0 {
		return ""
	}

	return id
}

// WithLogger returns a copy of ctx carrying a request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLoggerOrDefault returns the request-scoped logger in ctx, or fallback.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
