package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/handicap-tracker/internal/metrics"
	"github.com/mcoot/handicap-tracker/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// Metrics records request counts and latency per route.
// A nil collector set yields a pass-through middleware.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Observe(m)
}
