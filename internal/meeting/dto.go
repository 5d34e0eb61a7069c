package meeting

import "time"

// MeetingRequest schedules or reschedules a meeting
type MeetingRequest struct {
	ScheduledAt string `json:"scheduled_at" validate:"required"`
}

// MeetingResponse represents a meeting
type MeetingResponse struct {
	ID          int64  `json:"id"`
	GroupID     int64  `json:"group_id"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
}

// ToResponse converts a Meeting model to a MeetingResponse DTO
func (m *Meeting) ToResponse() *MeetingResponse {
	return &MeetingResponse{
		ID:          m.ID,
		GroupID:     m.GroupID,
		ScheduledAt: m.ScheduledAt.UTC().Format(time.RFC3339),
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
