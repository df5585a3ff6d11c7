package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brthurr/espn-toilet/internal/metrics"
)

func TestRequestLoggerTagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(base))
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		LoggerFromContext(r.Context()).Info("pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "abc123")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "request_id=abc123")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "msg=pong")
	assert.Contains(t, out, `msg="request complete"`)
	assert.Contains(t, out, "status=200")
	assert.Equal(t, 2, strings.Count(out, "request_id=abc123"))
}

func TestLoggerFromContextFallsBackToDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Same(t, slog.Default(), LoggerFromContext(req.Context()))
}

func TestRecordRequestsUsesRoutePattern(t *testing.T) {
	rec := metrics.NewRecorder()

	r := chi.NewRouter()
	r.Use(RecordRequests(rec))
	r.Get("/tournaments/{year}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/tournaments/2022", "/tournaments/2023", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "toilet_http_requests_total" {
			found = true
			assert.Len(t, f.GetMetric(), 2)
		}
	}
	assert.True(t, found)

	expected := `
# HELP toilet_http_requests_total HTTP requests by method, route and status.
# TYPE toilet_http_requests_total counter
toilet_http_requests_total{method="GET",route="/healthz",status="200"} 1
toilet_http_requests_total{method="GET",route="/tournaments/{year}",status="404"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), bytes.NewBufferString(expected), "toilet_http_requests_total"))
}
