package event

import "time"

const dateLayout = "2006-01-02"

// EventRequest creates or replaces an event
type EventRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	DueDate     string  `json:"due_date" validate:"required"`
	DueTime     string  `json:"due_time" validate:"required"`
	Type        string  `json:"type" validate:"omitempty,oneof=homework exam project"`
	GroupLabel  *string `json:"group_label" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,max=30"`
}

// EventResponse represents an event
type EventResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	DueDate     string  `json:"due_date"`
	DueTime     string  `json:"due_time"`
	Type        string  `json:"type"`
	GroupLabel  *string `json:"group_label,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts an Event model to an EventResponse DTO
func (e *Event) ToResponse() *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		DueDate:     e.DueDate.Format(dateLayout),
		DueTime:     e.DueTime,
		Type:        string(e.Type),
		GroupLabel:  e.GroupLabel,
		Description: e.Description,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
