package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "toilet"

// Reconcile outcomes.
const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
)

// Recorder wraps a private Prometheus registry. A nil *Recorder is valid and
// records nothing, so core code can take one unconditionally.
type Recorder struct {
	registry        *prometheus.Registry
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	gamesReconciled *prometheus.CounterVec
	gamesAdvanced   *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
	jobLatency      *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "League provider calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "League provider call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		gamesReconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_reconciled_total",
			Help:      "Games visited by the score reconciler by outcome.",
		}, []string{"outcome"}),
		gamesAdvanced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_advanced_total",
			Help:      "Decided games whose result was propagated, by round.",
		}, []string{"round"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and outcome.",
		}, []string{"job", "outcome"}),
		jobLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Scheduled job duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.providerCalls, r.providerLatency, r.gamesReconciled, r.gamesAdvanced, r.jobRuns, r.jobLatency,
		r.httpRequests, r.httpLatency,
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) RecordProviderCall(operation string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.providerCalls.WithLabelValues(operation, outcomeOf(err)).Inc()
	r.providerLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (r *Recorder) RecordReconcile(outcome string) {
	if r == nil {
		return
	}
	r.gamesReconciled.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RecordAdvance(round string) {
	if r == nil {
		return
	}
	r.gamesAdvanced.WithLabelValues(round).Inc()
}

func (r *Recorder) RecordJob(job string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.jobRuns.WithLabelValues(job, outcomeOf(err)).Inc()
	r.jobLatency.WithLabelValues(job).Observe(duration.Seconds())
}

// RecordHTTPRequest counts one served request. route should be the matched
// pattern, not the raw path, to keep label cardinality bounded.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
