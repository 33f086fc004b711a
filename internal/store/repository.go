// Package store defines the persistence interfaces for VigilGo.
// Implementations live in the memory, postgres, and redis subpackages.
package store

import (
	"context"

	"vigil-go/internal/domain"
)

// AlertRepository defines the interface for alert definition storage.
// This is typically backed by PostgreSQL for production use.
type AlertRepository interface {
	// Create stores a new definition and assigns its ID.
	Create(ctx context.Context, def *domain.AlertDefinition) error

	// Update modifies an existing definition, including run-state fields.
	Update(ctx context.Context, def *domain.AlertDefinition) error

	// Delete removes a definition by ID.
	Delete(ctx context.Context, id int64) error

	// GetByID retrieves a definition by its ID.
	GetByID(ctx context.Context, id int64) (*domain.AlertDefinition, error)

	// List retrieves definitions matching the filter criteria.
	List(ctx context.Context, filter domain.DefinitionFilter) ([]*domain.AlertDefinition, error)

	// ListActive retrieves all definitions with the active flag set.
	// This is the scheduler's query; it returns fresh values each call so
	// run-state updates are explicit write-backs, never shared mutation.
	ListActive(ctx context.Context) ([]*domain.AlertDefinition, error)
}

// MetricsStore accumulates platform activity into the counters the snapshot
// builder reads. Backed by Redis in production, memory otherwise.
type MetricsStore interface {
	// IncrDocuments counts one classified document for today. Failed
	// classifications count toward the error rate.
	IncrDocuments(ctx context.Context, failed bool) error

	// TouchUser marks a user as active today.
	TouchUser(ctx context.Context, userID string) error

	// SetGauge stores the latest sampled value for an infrastructure
	// metric such as queue_size or cpu_usage.
	SetGauge(ctx context.Context, name string, value float64) error

	// DocumentCounts returns today's processed and failed document counts.
	DocumentCounts(ctx context.Context) (processed, failed int64, err error)

	// ActiveUsers returns the number of distinct users seen today.
	ActiveUsers(ctx context.Context) (int64, error)

	// Gauges returns the latest value of every stored gauge.
	Gauges(ctx context.Context) (map[string]float64, error)

	// Close releases any resources held by the store.
	Close() error
}
