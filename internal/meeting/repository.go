package meeting

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository is the meeting persistence contract
type Repository interface {
	Create(ctx context.Context, groupID int64, at time.Time) (*Meeting, error)
	GetByID(ctx context.Context, id int64) (*Meeting, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Meeting, error)
	Update(ctx context.Context, id int64, at time.Time) (*Meeting, error)
	Delete(ctx context.Context, id int64) error
}

// PostgresRepository handles meeting persistence
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewRepository creates a new meeting repository
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanMeeting(row interface{ Scan(...interface{}) error }) (*Meeting, error) {
	m := &Meeting{}
	err := row.Scan(&m.ID, &m.GroupID, &m.ScheduledAt, &m.CreatedAt)
	return m, err
}

// Create inserts a meeting
func (r *PostgresRepository) Create(ctx context.Context, groupID int64, at time.Time) (*Meeting, error) {
	query := `
		INSERT INTO meetings (group_id, scheduled_at)
		VALUES ($1, $2)
		RETURNING id, group_id, scheduled_at, created_at
	`

	m, err := scanMeeting(r.db.QueryRowContext(ctx, query, groupID, at))
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return m, nil
}

// GetByID retrieves a meeting by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Meeting, error) {
	query := `SELECT id, group_id, scheduled_at, created_at FROM meetings WHERE id = $1`

	m, err := scanMeeting(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return m, nil
}

// ListByGroup retrieves a group's meetings in schedule order
func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID int64) ([]*Meeting, error) {
	query := `
		SELECT id, group_id, scheduled_at, created_at
		FROM meetings
		WHERE group_id = $1
		ORDER BY scheduled_at
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// Update reschedules a meeting
func (r *PostgresRepository) Update(ctx context.Context, id int64, at time.Time) (*Meeting, error) {
	query := `
		UPDATE meetings SET scheduled_at = $2
		WHERE id = $1
		RETURNING id, group_id, scheduled_at, created_at
	`

	m, err := scanMeeting(r.db.QueryRowContext(ctx, query, id, at))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}
	return m, nil
}

// Delete removes a meeting
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	return nil
}
