package notification

import "time"

// Notification is an in-app notice for one user
type Notification struct {
	ID                int64     `json:"id"`
	RecipientID       int64     `json:"recipient_id"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"` // e.g., "MEETING", "GROUP"
	RelatedEntityID   *int64    `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// EntityType names what a notification refers to
type EntityType string

const (
	EntityMeeting EntityType = "MEETING"
	EntityGroup   EntityType = "GROUP"
)
