package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vigil-go/internal/condition"
	"vigil-go/internal/metrics"
	"vigil-go/internal/store"
)

// MetricsBuilder implements Builder on top of the activity MetricsStore,
// supplemented with temporal values and a live database connection probe.
type MetricsBuilder struct {
	store   store.MetricsStore
	dbConns func() int64
	now     func() time.Time
	logger  *slog.Logger
}

// Option customizes a MetricsBuilder.
type Option func(*MetricsBuilder)

// WithDBConnections wires a live connection-count probe (e.g. the pgx pool
// stat). Without it, db_connections falls back to the sampled gauge.
func WithDBConnections(probe func() int64) Option {
	return func(b *MetricsBuilder) {
		b.dbConns = probe
	}
}

// WithClock overrides the time source for the temporal variables.
func WithClock(now func() time.Time) Option {
	return func(b *MetricsBuilder) {
		b.now = now
	}
}

// NewMetricsBuilder creates a snapshot builder backed by the metrics store.
func NewMetricsBuilder(ms store.MetricsStore, logger *slog.Logger, opts ...Option) *MetricsBuilder {
	b := &MetricsBuilder{
		store:  ms,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildSnapshot reads the aggregated counters and composes the full variable
// map the catalog describes. Any store failure fails the whole build; a
// partial snapshot would silently evaluate conditions against missing
// variables.
func (b *MetricsBuilder) BuildSnapshot(ctx context.Context) (Snapshot, error) {
	start := time.Now()

	processed, failed, err := b.store.DocumentCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read document counts: %w", err)
	}

	users, err := b.store.ActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read active users: %w", err)
	}

	gauges, err := b.store.Gauges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read gauges: %w", err)
	}

	errorRate := 0.0
	if processed > 0 {
		errorRate = float64(failed) / float64(processed) * 100
	}

	now := b.now().UTC()
	snap := Snapshot{
		condition.VarActiveUsers:    float64(users),
		condition.VarDocumentsToday: float64(processed),
		condition.VarErrorRate:      errorRate,
		condition.VarQueueSize:      gauges[condition.VarQueueSize],
		condition.VarCurrentHour:    float64(now.Hour()),
		condition.VarCurrentDate:    now.Truncate(24 * time.Hour),
		condition.VarCPUUsage:       gauges[condition.VarCPUUsage],
		condition.VarMemoryUsage:    gauges[condition.VarMemoryUsage],
		condition.VarAPILatency:     gauges[condition.VarAPILatency],
	}

	if b.dbConns != nil {
		snap[condition.VarDBConnections] = float64(b.dbConns())
	} else {
		snap[condition.VarDBConnections] = gauges[condition.VarDBConnections]
	}

	metrics.SnapshotBuildLatency.Observe(time.Since(start).Seconds())

	b.logger.Debug("snapshot built",
		"documents_today", processed,
		"error_rate", errorRate,
		"active_users", users,
	)

	return snap, nil
}
