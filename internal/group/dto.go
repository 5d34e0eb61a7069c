package group

const timeLayout = "2006-01-02T15:04:05Z"

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=2000"`
	IsPublic    *bool  `json:"is_public"`
}

// UpdateGroupRequest represents the host's edit of a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

// JoinRequest represents a request to join a group by code
type JoinRequest struct {
	JoinCode string `json:"join_code" validate:"required,joincode"`
}

// MemberActionRequest targets a member of the group identified by its code
type MemberActionRequest struct {
	JoinCode string `json:"join_code" validate:"required,joincode"`
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
}

// SetRoleRequest changes a member's role
type SetRoleRequest struct {
	JoinCode string `json:"join_code" validate:"required,joincode"`
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	Role     Role   `json:"role" validate:"required"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	JoinCode    string `json:"join_code"`
	HostID      int64  `json:"host_id"`
	MemberCount int    `json:"member_count"`
	CreatedAt   string `json:"created_at"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// BlockedResponse represents a blocked user
type BlockedResponse struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	BlockedAt string `json:"blocked_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		IsPublic:    g.IsPublic,
		JoinCode:    g.JoinCode,
		HostID:      g.HostID,
		MemberCount: g.MemberCount,
		CreatedAt:   g.CreatedAt.UTC().Format(timeLayout),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.UTC().Format(timeLayout),
	}
}

func toResponses(groups []*Group) []*GroupResponse {
	out := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		out[i] = g.ToResponse()
	}
	return out
}
