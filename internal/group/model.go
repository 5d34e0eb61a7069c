package group

import "time"

// Role is a member's role inside a group
type Role string

const (
	RoleHost      Role = "host"
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
)

// Assignable reports whether the host may give this role to a member
func (r Role) Assignable() bool {
	return r == RoleMember || r == RoleModerator
}

// Group represents a study group
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	JoinCode    string    `json:"join_code"`
	HostID      int64     `json:"host_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member represents a user's membership in a group
type Member struct {
	GroupID  int64     `json:"group_id"`
	UserID   int64     `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Populated from JOIN
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// BlockedUser is an entry of a group's block list
type BlockedUser struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	BlockedAt time.Time `json:"blocked_at"`
}
