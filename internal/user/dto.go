package user

// RegisterRequest represents the signup request body
type RegisterRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=100"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8,max=72"`
	Interests []string `json:"interests,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// UpdateProfileRequest represents the request body for updating a profile
type UpdateProfileRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string  `json:"email,omitempty" validate:"omitempty,email"`
	Interests []string `json:"interests,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// PasswordRequest adds a password, or changes it when one is already set
type PasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// ProfileResponse represents the response for a user's own profile
type ProfileResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Interests   []string `json:"interests"`
	GoogleID    *string  `json:"google_id,omitempty"`
	HasPassword bool     `json:"has_password"`
	CreatedAt   string   `json:"created_at"`
}

// ToResponse converts a User model to a ProfileResponse DTO
func (u *User) ToResponse() *ProfileResponse {
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return &ProfileResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Interests:   interests,
		GoogleID:    u.GoogleID,
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
