package course

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Repository is the course persistence contract
type Repository interface {
	Create(ctx context.Context, c *Course) (*Course, error)
	GetByID(ctx context.Context, id int64) (*Course, error)
	List(ctx context.Context, filter Filter) ([]*Course, error)
	Update(ctx context.Context, c *Course) (*Course, error)
	Delete(ctx context.Context, id int64) error
}

// PostgresRepository handles course persistence
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewRepository creates a new course repository
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const courseColumns = `c.id, c.author_id, u.name, c.name, c.description, c.categories, c.tags,
	c.image_url, c.image_key, c.resource_url, c.resource_key, c.link, c.created_at, c.updated_at`

func scanCourse(row interface{ Scan(...interface{}) error }) (*Course, error) {
	c := &Course{}
	err := row.Scan(
		&c.ID, &c.AuthorID, &c.AuthorName, &c.Name, &c.Description,
		pq.Array(&c.Categories), pq.Array(&c.Tags),
		&c.ImageURL, &c.ImageKey, &c.ResourceURL, &c.ResourceKey, &c.Link,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// Create inserts a course
func (r *PostgresRepository) Create(ctx context.Context, c *Course) (*Course, error) {
	query := `
		INSERT INTO courses (author_id, name, description, categories, tags,
			image_url, image_key, resource_url, resource_key, link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		c.AuthorID, c.Name, c.Description, pq.Array(nonNil(c.Categories)), pq.Array(nonNil(c.Tags)),
		c.ImageURL, c.ImageKey, c.ResourceURL, c.ResourceKey, c.Link,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a course by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Course, error) {
	query := `SELECT ` + courseColumns + `
		FROM courses c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1`

	c, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return c, nil
}

// List retrieves courses matching the filter, newest first
func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]*Course, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.AuthorID > 0 {
		args = append(args, filter.AuthorID)
		where = append(where, fmt.Sprintf("c.author_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("$%d = ANY(c.categories)", len(args)))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(c.tags)", len(args)))
	}

	query := `SELECT ` + courseColumns + `
		FROM courses c
		JOIN users u ON u.id = c.author_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Update replaces the mutable fields of a course
func (r *PostgresRepository) Update(ctx context.Context, c *Course) (*Course, error) {
	query := `
		UPDATE courses
		SET name = $2, description = $3, categories = $4, tags = $5,
			image_url = $6, image_key = $7, resource_url = $8, resource_key = $9,
			link = $10, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Description, pq.Array(nonNil(c.Categories)), pq.Array(nonNil(c.Tags)),
		c.ImageURL, c.ImageKey, c.ResourceURL, c.ResourceKey, c.Link,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, c.ID)
}

// Delete removes a course
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}
