package meeting

import "time"

// Meeting is a scheduled session of a group
type Meeting struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CreatedAt   time.Time `json:"created_at"`
}
