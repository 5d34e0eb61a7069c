package event

import "time"

// Type classifies a calendar event
type Type string

const (
	TypeHomework Type = "homework"
	TypeExam     Type = "exam"
	TypeProject  Type = "project"
)

// Event is a personal calendar entry owned by one user
type Event struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	DueDate     time.Time `json:"due_date"`
	DueTime     string    `json:"due_time"`
	Type        Type      `json:"type"`
	GroupLabel  *string   `json:"group_label,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
