package chat

import "time"

// Reaction is one user's reaction to a message. A user has at most one
// reaction per message.
type Reaction struct {
	UserID    int64     `json:"user_id"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

// Message represents a chat message in a group
type Message struct {
	ID        int64      `json:"id"`
	GroupID   int64      `json:"group_id"`
	UserID    int64      `json:"user_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Reactions []Reaction `json:"reactions"`

	// Populated from JOIN
	AuthorName string `json:"author_name,omitempty"`
}
