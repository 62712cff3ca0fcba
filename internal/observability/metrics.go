package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records service, handler and job activity.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordReportIngested(ctx context.Context)
	RecordParseFailure(ctx context.Context, reason string)
	RecordSyncFailure(ctx context.Context, op string)
	RecordAwardsAssigned(ctx context.Context, count int)
}

// PrometheusMetrics implements Metrics on a Prometheus registry.
type PrometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec

	reportsIngested prometheus.Counter
	parseFailures   *prometheus.CounterVec
	syncFailures    *prometheus.CounterVec
	awardsAssigned  prometheus.Counter
}

var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the step-bot collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stepbot",
			Name:      "operation_attempts_total",
			Help:      "Operations started, by operation and service.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stepbot",
			Name:      "operation_success_total",
			Help:      "Operations finished successfully.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stepbot",
			Name:      "operation_failure_total",
			Help:      "Operations that returned an error.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stepbot",
			Name:      "operation_duration_seconds",
			Help:      "Operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		reportsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stepbot",
			Name:      "reports_ingested_total",
			Help:      "Step reports stored.",
		}),
		parseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stepbot",
			Name:      "report_parse_failures_total",
			Help:      "Marked messages rejected by the parser.",
		}, []string{"reason"}),
		syncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stepbot",
			Name:      "grid_sync_failures_total",
			Help:      "Grid store failures, by operation.",
		}, []string{"op"}),
		awardsAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stepbot",
			Name:      "awards_assigned_total",
			Help:      "Medals assigned by daily runs.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.attempts, m.successes, m.failures, m.durations,
			m.reportsIngested, m.parseFailures, m.syncFailures, m.awardsAssigned,
		)
	}
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordReportIngested(_ context.Context) {
	m.reportsIngested.Inc()
}

func (m *PrometheusMetrics) RecordParseFailure(_ context.Context, reason string) {
	m.parseFailures.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) RecordSyncFailure(_ context.Context, op string) {
	m.syncFailures.WithLabelValues(op).Inc()
}

func (m *PrometheusMetrics) RecordAwardsAssigned(_ context.Context, count int) {
	m.awardsAssigned.Add(float64(count))
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

var _ Metrics = NoOpMetrics{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordReportIngested(context.Context)                                   {}
func (NoOpMetrics) RecordParseFailure(context.Context, string)                             {}
func (NoOpMetrics) RecordSyncFailure(context.Context, string)                              {}
func (NoOpMetrics) RecordAwardsAssigned(context.Context, int)                              {}
