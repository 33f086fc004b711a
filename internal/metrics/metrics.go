// Package metrics provides Prometheus metrics for VigilGo.
// It tracks the activity pipeline, sweep execution, and notification
// dispatch so suppressed sweeps and failing channels are visible.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "vigil"
)

// Sweep metrics track the scheduler.
var (
	// SweepsTotal counts sweeps that actually ran.
	SweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Total number of alert sweeps executed",
		},
	)

	// SweepsSkippedTotal counts sweeps suppressed by the single-flight guard.
	SweepsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_skipped_total",
			Help:      "Total number of sweeps skipped because a sweep was still running",
		},
	)

	// SweepDuration measures how long one sweep takes end to end.
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of one sweep over all active definitions in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// SnapshotBuildLatency measures context snapshot construction time.
	SnapshotBuildLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_build_latency_seconds",
			Help:      "Time to build the context snapshot in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// SnapshotFailuresTotal counts aborted ticks due to snapshot errors.
	SnapshotFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_failures_total",
			Help:      "Total number of ticks aborted because the snapshot could not be built",
		},
	)
)

// Evaluation metrics track condition outcomes.
var (
	// EvaluationsTotal counts condition evaluations by result.
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of condition evaluations",
		},
		[]string{"result"}, // result: met, not_met
	)

	// CooldownSkipsTotal counts definitions skipped inside their cooldown window.
	CooldownSkipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cooldown_skips_total",
			Help:      "Total number of definitions skipped because they triggered recently",
		},
	)
)

// Dispatch metrics track the notification pipeline.
var (
	// TriggersTotal counts fired alerts by channel and priority.
	TriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "Total number of alert triggers dispatched",
		},
		[]string{"channel", "priority"},
	)

	// DispatchFailuresTotal counts channel deliveries that failed entirely.
	DispatchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_failures_total",
			Help:      "Total number of failed channel dispatches",
		},
		[]string{"channel"},
	)

	// DispatchLatency measures one channel delivery.
	DispatchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_latency_seconds",
			Help:      "Time to deliver one trigger to its channel in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Activity metrics track the context source pipeline.
var (
	// ActivityEventsTotal counts ingested activity events by kind.
	ActivityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_total",
			Help:      "Total number of activity events received by the ingest API",
		},
		[]string{"kind"},
	)

	// ActivityEventsProcessedTotal counts events folded into the metrics store.
	ActivityEventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_processed_total",
			Help:      "Total number of activity events processed by the tracker",
		},
		[]string{"kind", "result"}, // result: success, failure
	)

	// QueuePublishLatency measures time to publish an event to the queue.
	QueuePublishLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "queue_publish_latency_seconds",
			Help:      "Time to publish an activity event to the queue in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)
)

// Store metrics track persistence health.
var (
	// ActiveDefinitions tracks how many definitions the last sweep evaluated.
	ActiveDefinitions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_definitions",
			Help:      "Number of active alert definitions seen by the last sweep",
		},
	)

	// RunStateWritesTotal counts run-state persistence attempts.
	RunStateWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_state_writes_total",
			Help:      "Total number of run-state write-backs",
		},
		[]string{"status"}, // status: success, failure
	)
)
