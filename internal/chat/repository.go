package chat

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is the message persistence contract
type Repository interface {
	Create(ctx context.Context, msg *Message) (*Message, error)
	// GetByID returns the message with its reactions
	GetByID(ctx context.Context, id int64) (*Message, error)
	// ListByGroup returns the group's messages oldest first, with reactions
	ListByGroup(ctx context.Context, groupID int64) ([]*Message, error)
	Delete(ctx context.Context, id int64) error

	UpsertReaction(ctx context.Context, messageID, userID int64, reaction string) error
	DeleteReaction(ctx context.Context, messageID, userID int64) error
	ListReactions(ctx context.Context, messageID int64) ([]Reaction, error)
}

// PostgresRepository handles message persistence
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewRepository creates a new message repository
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new message
func (r *PostgresRepository) Create(ctx context.Context, msg *Message) (*Message, error) {
	query := `
		WITH inserted AS (
			INSERT INTO messages (group_id, user_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, group_id, user_id, content, created_at
		)
		SELECT i.id, i.group_id, i.user_id, i.content, i.created_at, u.name
		FROM inserted i
		INNER JOIN users u ON i.user_id = u.id
	`

	created := &Message{Reactions: []Reaction{}}
	err := r.db.QueryRowContext(ctx, query, msg.GroupID, msg.UserID, msg.Content).Scan(
		&created.ID,
		&created.GroupID,
		&created.UserID,
		&created.Content,
		&created.CreatedAt,
		&created.AuthorName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return created, nil
}

// GetByID retrieves a message by its ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Message, error) {
	query := `
		SELECT m.id, m.group_id, m.user_id, m.content, m.created_at, u.name
		FROM messages m
		INNER JOIN users u ON m.user_id = u.id
		WHERE m.id = $1
	`

	msg := &Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.GroupID,
		&msg.UserID,
		&msg.Content,
		&msg.CreatedAt,
		&msg.AuthorName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	msg.Reactions, err = r.ListReactions(ctx, id)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListByGroup retrieves the full history of a group
func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID int64) ([]*Message, error) {
	query := `
		SELECT m.id, m.group_id, m.user_id, m.content, m.created_at, u.name
		FROM messages m
		INNER JOIN users u ON m.user_id = u.id
		WHERE m.group_id = $1
		ORDER BY m.created_at, m.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	byID := make(map[int64]*Message)
	for rows.Next() {
		msg := &Message{Reactions: []Reaction{}}
		if err := rows.Scan(
			&msg.ID,
			&msg.GroupID,
			&msg.UserID,
			&msg.Content,
			&msg.CreatedAt,
			&msg.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
		byID[msg.ID] = msg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reactionQuery := `
		SELECT r.message_id, r.user_id, r.reaction, r.created_at
		FROM message_reactions r
		INNER JOIN messages m ON r.message_id = m.id
		WHERE m.group_id = $1
		ORDER BY r.created_at
	`
	reactionRows, err := r.db.QueryContext(ctx, reactionQuery, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer reactionRows.Close()

	for reactionRows.Next() {
		var messageID int64
		var reaction Reaction
		if err := reactionRows.Scan(&messageID, &reaction.UserID, &reaction.Reaction, &reaction.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		if msg, ok := byID[messageID]; ok {
			msg.Reactions = append(msg.Reactions, reaction)
		}
	}

	return messages, reactionRows.Err()
}

// Delete removes a message and its reactions
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// UpsertReaction sets the user's reaction, replacing any previous one
func (r *PostgresRepository) UpsertReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	query := `
		INSERT INTO message_reactions (message_id, user_id, reaction)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id)
		DO UPDATE SET reaction = EXCLUDED.reaction, created_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, messageID, userID, reaction); err != nil {
		return fmt.Errorf("failed to save reaction: %w", err)
	}
	return nil
}

// DeleteReaction clears the user's reaction
func (r *PostgresRepository) DeleteReaction(ctx context.Context, messageID, userID int64) error {
	query := `DELETE FROM message_reactions WHERE message_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, messageID, userID); err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	return nil
}

// ListReactions retrieves a message's reactions in update order
func (r *PostgresRepository) ListReactions(ctx context.Context, messageID int64) ([]Reaction, error) {
	query := `
		SELECT user_id, reaction, created_at
		FROM message_reactions
		WHERE message_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	reactions := []Reaction{}
	for rows.Next() {
		var reaction Reaction
		if err := rows.Scan(&reaction.UserID, &reaction.Reaction, &reaction.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, reaction)
	}

	return reactions, rows.Err()
}
