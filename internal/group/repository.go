package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/studyhive/studyhive/internal/database"
)

// errJoinCodeTaken is returned by Create when the join code collides
var errJoinCodeTaken = errors.New("join code already in use")

// Repository is the group persistence contract
type Repository interface {
	// Create stores the group and its host membership atomically
	Create(ctx context.Context, group *Group) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	GetByJoinCode(ctx context.Context, code string) (*Group, error)
	ListByMember(ctx context.Context, userID int64) ([]*Group, error)
	ListPublic(ctx context.Context) ([]*Group, error)
	ListHostedBy(ctx context.Context, userID int64) ([]*Group, error)
	Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, id int64) error

	GetMember(ctx context.Context, groupID, userID int64) (*Member, error)
	ListMembers(ctx context.Context, groupID int64) ([]*Member, error)
	AddMember(ctx context.Context, groupID, userID int64, role Role) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	SetRole(ctx context.Context, groupID, userID int64, role Role) error

	// Block removes the membership and records the block in one step
	Block(ctx context.Context, groupID, userID int64) error
	IsBlocked(ctx context.Context, groupID, userID int64) (bool, error)
	ListBlocked(ctx context.Context, groupID int64) ([]*BlockedUser, error)
}

// PostgresRepository handles group data persistence
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const groupColumns = `g.id, g.name, g.description, g.is_public, g.join_code, g.host_id, g.created_at,
	(SELECT COUNT(*) FROM group_members c WHERE c.group_id = g.id)`

func scanGroup(row interface{ Scan(...interface{}) error }) (*Group, error) {
	group := &Group{}
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.IsPublic,
		&group.JoinCode,
		&group.HostID,
		&group.CreatedAt,
		&group.MemberCount,
	)
	return group, err
}

func (r *PostgresRepository) queryGroups(ctx context.Context, query string, args ...interface{}) ([]*Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

// Create inserts a new group and the host membership
func (r *PostgresRepository) Create(ctx context.Context, group *Group) (*Group, error) {
	created := &Group{}
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO groups (name, description, is_public, join_code, host_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, name, description, is_public, join_code, host_id, created_at
		`
		err := tx.QueryRowContext(ctx, query,
			group.Name, group.Description, group.IsPublic, group.JoinCode, group.HostID,
		).Scan(
			&created.ID,
			&created.Name,
			&created.Description,
			&created.IsPublic,
			&created.JoinCode,
			&created.HostID,
			&created.CreatedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return errJoinCodeTaken
			}
			return fmt.Errorf("failed to create group: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)`,
			created.ID, created.HostID, RoleHost,
		)
		if err != nil {
			return fmt.Errorf("failed to add host: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created.MemberCount = 1
	return created, nil
}

// GetByID retrieves a group by its ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1`

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// GetByJoinCode retrieves a group by its join code
func (r *PostgresRepository) GetByJoinCode(ctx context.Context, code string) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.join_code = $1`

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group by code: %w", err)
	}

	return group, nil
}

// ListByMember retrieves all groups a user belongs to
func (r *PostgresRepository) ListByMember(ctx context.Context, userID int64) ([]*Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups g
		INNER JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC
	`
	return r.queryGroups(ctx, query, userID)
}

// ListPublic retrieves every public group
func (r *PostgresRepository) ListPublic(ctx context.Context) ([]*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.is_public ORDER BY g.created_at DESC`
	return r.queryGroups(ctx, query)
}

// ListHostedBy retrieves the groups hosted by a user
func (r *PostgresRepository) ListHostedBy(ctx context.Context, userID int64) ([]*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.host_id = $1`
	return r.queryGroups(ctx, query, userID)
}

// Update modifies the fields that are set
func (r *PostgresRepository) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	query := `
		UPDATE groups
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    is_public = COALESCE($4, is_public)
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, req.Name, req.Description, req.IsPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes a group; members, blocks, messages and meetings cascade
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// GetMember retrieves a specific membership
func (r *PostgresRepository) GetMember(ctx context.Context, groupID, userID int64) (*Member, error) {
	query := `
		SELECT gm.group_id, gm.user_id, gm.role, gm.joined_at, u.name, u.email
		FROM group_members gm
		INNER JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1 AND gm.user_id = $2
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
		&member.Name,
		&member.Email,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// ListMembers retrieves all members of a group in join order
func (r *PostgresRepository) ListMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	query := `
		SELECT gm.group_id, gm.user_id, gm.role, gm.joined_at, u.name, u.email
		FROM group_members gm
		INNER JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
			&member.Name,
			&member.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// lockGroup takes the group row lock that serializes joins against blocks
func lockGroup(ctx context.Context, tx *sql.Tx, groupID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrGroupNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock group: %w", err)
	}
	return nil
}

// AddMember inserts a membership unless the user is blocked from the group.
// It returns ErrBlocked when a block exists at insert time.
func (r *PostgresRepository) AddMember(ctx context.Context, groupID, userID int64, role Role) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM group_blocks WHERE group_id = $1 AND user_id = $2)`

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockGroup(ctx, tx, groupID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, groupID, userID, role)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyMember
			}
			return fmt.Errorf("failed to add member: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return ErrBlocked
		}
		return nil
	})
}

// RemoveMember deletes a membership; missing rows are not an error
func (r *PostgresRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// SetRole updates a member's role
func (r *PostgresRepository) SetRole(ctx context.Context, groupID, userID int64, role Role) error {
	query := `UPDATE group_members SET role = $3 WHERE group_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, groupID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Block removes the membership and adds the block in one transaction,
// holding the same group lock as AddMember
func (r *PostgresRepository) Block(ctx context.Context, groupID, userID int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockGroup(ctx, tx, groupID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID,
		); err != nil {
			return fmt.Errorf("failed to remove blocked member: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO group_blocks (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, groupID, userID,
		); err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to block user: %w", err)
		}
		return nil
	})
}

// IsBlocked reports whether the user is on the group's block list
func (r *PostgresRepository) IsBlocked(ctx context.Context, groupID, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM group_blocks WHERE group_id = $1 AND user_id = $2)`

	var blocked bool
	if err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(&blocked); err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return blocked, nil
}

// ListBlocked retrieves the group's block list
func (r *PostgresRepository) ListBlocked(ctx context.Context, groupID int64) ([]*BlockedUser, error) {
	query := `
		SELECT b.user_id, u.name, b.blocked_at
		FROM group_blocks b
		INNER JOIN users u ON b.user_id = u.id
		WHERE b.group_id = $1
		ORDER BY b.blocked_at
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked users: %w", err)
	}
	defer rows.Close()

	var blocked []*BlockedUser
	for rows.Next() {
		b := &BlockedUser{}
		if err := rows.Scan(&b.UserID, &b.Name, &b.BlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blocked user: %w", err)
		}
		blocked = append(blocked, b)
	}

	return blocked, rows.Err()
}
