package file

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is the file metadata persistence contract
type Repository interface {
	Create(ctx context.Context, f *File) (*File, error)
	GetByID(ctx context.Context, id int64) (*File, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*File, error)
	ListByUploader(ctx context.Context, userID int64) ([]*File, error)
	Delete(ctx context.Context, id int64) error
}

// PostgresRepository handles file metadata persistence
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewRepository creates a new file repository
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `f.id, f.group_id, f.user_id, f.name, f.storage_key, f.url, f.created_at, u.name`

func scanFile(row interface{ Scan(...interface{}) error }) (*File, error) {
	f := &File{}
	err := row.Scan(
		&f.ID,
		&f.GroupID,
		&f.UserID,
		&f.Name,
		&f.StorageKey,
		&f.URL,
		&f.CreatedAt,
		&f.UploaderName,
	)
	return f, err
}

// Create inserts file metadata
func (r *PostgresRepository) Create(ctx context.Context, f *File) (*File, error) {
	query := `
		WITH inserted AS (
			INSERT INTO files (group_id, user_id, name, storage_key, url)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT ` + fileColumns + `
		FROM inserted f
		INNER JOIN users u ON f.user_id = u.id
	`

	created, err := scanFile(r.db.QueryRowContext(ctx, query, f.GroupID, f.UserID, f.Name, f.StorageKey, f.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return created, nil
}

// GetByID retrieves file metadata by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files f INNER JOIN users u ON f.user_id = u.id WHERE f.id = $1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) list(ctx context.Context, where string, arg int64) ([]*File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files f
		INNER JOIN users u ON f.user_id = u.id
		WHERE ` + where + `
		ORDER BY f.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// ListByGroup retrieves a group's files, newest first
func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID int64) ([]*File, error) {
	return r.list(ctx, "f.group_id = $1", groupID)
}

// ListByUploader retrieves every file a user uploaded
func (r *PostgresRepository) ListByUploader(ctx context.Context, userID int64) ([]*File, error) {
	return r.list(ctx, "f.user_id = $1", userID)
}

// Delete removes file metadata
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
