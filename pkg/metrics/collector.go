// Package metrics exposes Prometheus instruments for provisioning runs.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds every provisioner metric; it is what gets pushed.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	statementsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provision_statements_total",
			Help: "Total number of SQL statements sent, labeled by statement and status",
		},
		[]string{"statement", "status"},
	)
	stageDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stage_duration_seconds",
			Help:    "Duration of provisioning stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	stageTransitionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_transitions_total",
			Help: "Total number of pipeline stage transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	lockOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "run_lock_operations_total",
			Help: "Total number of run lock operations by operation and result",
		},
		[]string{"operation", "result"},
	)
	lastRunSuccess = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "provision_last_run_success",
			Help: "1 when the last provisioning run succeeded, 0 otherwise",
		},
	)
)

// RecordStatement counts one SQL statement outcome.
func RecordStatement(statement, status string) {
	if statement == "" {
		statement = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	statementsTotal.WithLabelValues(statement, status).Inc()
}

// RecordStageDuration observes how long a stage ran.
func RecordStageDuration(stage string, duration time.Duration) {
	if stage == "" {
		stage = "unknown"
	}

	stageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStageTransition tracks pipeline transitions.
func RecordStageTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stageTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// RecordLockOperation counts an acquire or release of the run lock.
func RecordLockOperation(operation, result string) {
	if lockOperationsTotal == nil {
		return
	}

	lockOperationsTotal.WithLabelValues(operation, result).Inc()
}

// SetLastRunSuccess records the overall outcome of the run.
func SetLastRunSuccess(ok bool) {
	if ok {
		lastRunSuccess.Set(1)
		return
	}
	lastRunSuccess.Set(0)
}

// Push sends Registry to a Pushgateway. A blank url is a no-op.
func Push(ctx context.Context, url, job, runID string) error {
	if url == "" {
		return nil
	}

	pusher := push.New(url, job).Gatherer(Registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}

	return nil
}
