package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"vigil-go/internal/domain"
)

// AlertRepository implements store.AlertRepository using PostgreSQL.
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a new PostgreSQL-backed alert definition repository.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const definitionColumns = `
	id, name, description, condition, channel, recipients, active, priority,
	created_by, created_at, last_triggered_at, trigger_count, last_result
`

// Create stores a new definition and assigns its ID.
func (r *AlertRepository) Create(ctx context.Context, def *domain.AlertDefinition) error {
	query := `
		INSERT INTO alert_definitions (
			name, description, condition, channel, recipients, active,
			priority, created_by, created_at, last_triggered_at,
			trigger_count, last_result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.db.pool.QueryRow(ctx, query,
		def.Name,
		def.Description,
		def.Condition,
		def.Channel,
		def.Recipients,
		def.Active,
		def.Priority,
		def.CreatedBy,
		def.CreatedAt,
		def.LastTriggeredAt,
		def.TriggerCount,
		def.LastResult,
	).Scan(&def.ID)

	if err != nil {
		return fmt.Errorf("failed to create alert definition: %w", err)
	}

	return nil
}

// Update modifies an existing definition, including run-state fields.
func (r *AlertRepository) Update(ctx context.Context, def *domain.AlertDefinition) error {
	query := `
		UPDATE alert_definitions SET
			name = $2,
			description = $3,
			condition = $4,
			channel = $5,
			recipients = $6,
			active = $7,
			priority = $8,
			last_triggered_at = $9,
			trigger_count = $10,
			last_result = $11
		WHERE id = $1
	`

	result, err := r.db.pool.Exec(ctx, query,
		def.ID,
		def.Name,
		def.Description,
		def.Condition,
		def.Channel,
		def.Recipients,
		def.Active,
		def.Priority,
		def.LastTriggeredAt,
		def.TriggerCount,
		def.LastResult,
	)

	if err != nil {
		return fmt.Errorf("failed to update alert definition: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrDefinitionNotFound
	}

	return nil
}

// Delete removes a definition by ID.
func (r *AlertRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM alert_definitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert definition: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrDefinitionNotFound
	}

	return nil
}

// GetByID retrieves a definition by its ID.
func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*domain.AlertDefinition, error) {
	query := `SELECT ` + definitionColumns + ` FROM alert_definitions WHERE id = $1`

	def, err := scanDefinition(r.db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDefinitionNotFound
		}
		return nil, fmt.Errorf("failed to get alert definition: %w", err)
	}

	return def, nil
}

// List retrieves definitions matching the filter criteria.
func (r *AlertRepository) List(ctx context.Context, filter domain.DefinitionFilter) ([]*domain.AlertDefinition, error) {
	query := `SELECT ` + definitionColumns + ` FROM alert_definitions WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.Channel != "" {
		query += fmt.Sprintf(" AND channel = $%d", argPos)
		args = append(args, filter.Channel)
		argPos++
	}
	if filter.Active != nil {
		query += fmt.Sprintf(" AND active = $%d", argPos)
		args = append(args, *filter.Active)
		argPos++
	}

	query += " ORDER BY id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert definitions: %w", err)
	}
	defer rows.Close()

	var defs []*domain.AlertDefinition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert definition: %w", err)
		}
		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert definitions: %w", err)
	}

	return defs, nil
}

// ListActive retrieves all definitions with the active flag set.
func (r *AlertRepository) ListActive(ctx context.Context) ([]*domain.AlertDefinition, error) {
	active := true
	return r.List(ctx, domain.DefinitionFilter{Active: &active})
}

// rowScanner abstracts pgx.Row and pgx.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (*domain.AlertDefinition, error) {
	var def domain.AlertDefinition
	err := row.Scan(
		&def.ID,
		&def.Name,
		&def.Description,
		&def.Condition,
		&def.Channel,
		&def.Recipients,
		&def.Active,
		&def.Priority,
		&def.CreatedBy,
		&def.CreatedAt,
		&def.LastTriggeredAt,
		&def.TriggerCount,
		&def.LastResult,
	)
	if err != nil {
		return nil, err
	}
	return &def, nil
}
