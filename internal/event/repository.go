package event

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is the event persistence contract. Every lookup is scoped
// to the owner; another user's event reads as absent.
type Repository interface {
	Create(ctx context.Context, e *Event) (*Event, error)
	Get(ctx context.Context, id, userID int64) (*Event, error)
	ListByUser(ctx context.Context, userID int64) ([]*Event, error)
	Update(ctx context.Context, e *Event) (*Event, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

// PostgresRepository handles event persistence
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewRepository creates a new event repository
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const eventColumns = `id, user_id, name, due_date, due_time, type, group_label, description, status, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*Event, error) {
	e := &Event{}
	err := row.Scan(
		&e.ID, &e.UserID, &e.Name, &e.DueDate, &e.DueTime, &e.Type,
		&e.GroupLabel, &e.Description, &e.Status, &e.CreatedAt,
	)
	return e, err
}

// Create inserts an event
func (r *PostgresRepository) Create(ctx context.Context, e *Event) (*Event, error) {
	query := `
		INSERT INTO events (user_id, name, due_date, due_time, type, group_label, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns

	created, err := scanEvent(r.db.QueryRowContext(ctx, query,
		e.UserID, e.Name, e.DueDate, e.DueTime, e.Type, e.GroupLabel, e.Description, e.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// Get retrieves one of the user's events
func (r *PostgresRepository) Get(ctx context.Context, id, userID int64) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// ListByUser retrieves the user's events by due date
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY due_date, due_time, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update replaces the mutable fields of one of the user's events
func (r *PostgresRepository) Update(ctx context.Context, e *Event) (*Event, error) {
	query := `
		UPDATE events
		SET name = $3, due_date = $4, due_time = $5, type = $6,
			group_label = $7, description = $8, status = $9
		WHERE id = $1 AND user_id = $2
		RETURNING ` + eventColumns

	updated, err := scanEvent(r.db.QueryRowContext(ctx, query,
		e.ID, e.UserID, e.Name, e.DueDate, e.DueTime, e.Type, e.GroupLabel, e.Description, e.Status,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return updated, nil
}

// Delete removes one of the user's events, reporting whether it existed
func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	return n > 0, nil
}
