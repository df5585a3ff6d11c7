package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordProviderCall("scores", time.Millisecond, nil)
		r.RecordReconcile(OutcomeUpdated)
		r.RecordAdvance("1")
		r.RecordJob("reconcile", time.Second, errors.New("boom"))
		r.RecordHTTPRequest(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)
	})
	assert.Nil(t, r.Registry())
}

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.RecordProviderCall("scores", 10*time.Millisecond, nil)
	r.RecordProviderCall("scores", 10*time.Millisecond, errors.New("timeout"))
	r.RecordReconcile(OutcomeUpdated)
	r.RecordReconcile(OutcomeUpdated)
	r.RecordReconcile(OutcomeSkipped)
	r.RecordAdvance("2")
	r.RecordJob("advance", time.Second, nil)
	r.RecordHTTPRequest(http.MethodPost, "/tournaments/{year}/refresh", http.StatusServiceUnavailable, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.providerCalls.WithLabelValues("scores", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.providerCalls.WithLabelValues("scores", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.gamesReconciled.WithLabelValues(OutcomeUpdated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.gamesReconciled.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.gamesAdvanced.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobRuns.WithLabelValues("advance", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues(http.MethodPost, "/tournaments/{year}/refresh", "503")))
}

func TestHandlerServesRegistry(t *testing.T) {
	r := NewRecorder()
	r.RecordReconcile(OutcomeUnchanged)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `toilet_games_reconciled_total{outcome="unchanged"} 1`)
}
