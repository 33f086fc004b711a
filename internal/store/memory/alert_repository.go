// Package memory provides in-memory implementations of the store interfaces.
// This is useful for testing and development without external dependencies.
package memory

import (
	"context"
	"sort"
	"sync"

	"vigil-go/internal/domain"
)

// AlertRepository is an in-memory implementation of store.AlertRepository.
type AlertRepository struct {
	mu     sync.RWMutex
	defs   map[int64]*domain.AlertDefinition
	nextID int64
}

// NewAlertRepository creates a new in-memory alert definition repository.
func NewAlertRepository() *AlertRepository {
	return &AlertRepository{
		defs:   make(map[int64]*domain.AlertDefinition),
		nextID: 1,
	}
}

// Create stores a new definition and assigns its ID.
func (r *AlertRepository) Create(ctx context.Context, def *domain.AlertDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def.ID = r.nextID
	r.nextID++

	// Store a copy to prevent external modification
	defCopy := cloneDefinition(def)
	r.defs[def.ID] = defCopy
	return nil
}

// Update modifies an existing definition.
func (r *AlertRepository) Update(ctx context.Context, def *domain.AlertDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.ID]; !exists {
		return domain.ErrDefinitionNotFound
	}
	r.defs[def.ID] = cloneDefinition(def)
	return nil
}

// Delete removes a definition by ID.
func (r *AlertRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[id]; !exists {
		return domain.ErrDefinitionNotFound
	}
	delete(r.defs, id)
	return nil
}

// GetByID retrieves a definition by its ID.
func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*domain.AlertDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.defs[id]
	if !exists {
		return nil, domain.ErrDefinitionNotFound
	}
	return cloneDefinition(def), nil
}

// List retrieves definitions matching the filter criteria.
func (r *AlertRepository) List(ctx context.Context, filter domain.DefinitionFilter) ([]*domain.AlertDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.AlertDefinition
	for _, def := range r.defs {
		if filter.Channel != "" && def.Channel != filter.Channel {
			continue
		}
		if filter.Active != nil && def.Active != *filter.Active {
			continue
		}
		results = append(results, cloneDefinition(def))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })

	// Apply offset and limit
	start := filter.Offset
	if start > len(results) {
		start = len(results)
	}
	end := len(results)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return results[start:end], nil
}

// ListActive retrieves all definitions with the active flag set, ordered by ID.
func (r *AlertRepository) ListActive(ctx context.Context) ([]*domain.AlertDefinition, error) {
	active := true
	return r.List(ctx, domain.DefinitionFilter{Active: &active})
}

// Clear removes all data from the repository. Useful for test cleanup.
func (r *AlertRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defs = make(map[int64]*domain.AlertDefinition)
	r.nextID = 1
}

func cloneDefinition(def *domain.AlertDefinition) *domain.AlertDefinition {
	defCopy := *def
	defCopy.Recipients = append([]string(nil), def.Recipients...)
	if def.LastTriggeredAt != nil {
		t := *def.LastTriggeredAt
		defCopy.LastTriggeredAt = &t
	}
	return &defCopy
}
