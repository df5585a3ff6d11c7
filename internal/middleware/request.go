package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/metrics"
)

type ContextKey string

const LoggerKey ContextKey = "logger"

const unmatchedRoute = "unmatched"

// RequestLogger stores a logger tagged with the request id and method in the
// request context and writes one line per finished request. It must run after
// chimiddleware.RequestID.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = logging.OrDiscard(base)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := base.With(
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := context.WithValue(r.Context(), LoggerKey, logger)

			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Info("request complete",
				slog.Int("status", statusOf(ww)),
				slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
			)
		})
	}
}

// LoggerFromContext returns the request logger, or slog.Default outside a request.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(LoggerKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// RecordRequests reports each request to rec labelled by its chi route pattern.
func RecordRequests(rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			rec.RecordHTTPRequest(r.Method, routePattern(r), statusOf(ww), time.Since(start))
		})
	}
}

// Handlers that never call WriteHeader answered 200.
func statusOf(ww chimiddleware.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}
