package auth

import "github.com/studyhive/studyhive/internal/user"

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is returned by signup and login
type SessionResponse struct {
	Token     string                `json:"token"`
	ExpiresAt string                `json:"expires_at"`
	User      *user.ProfileResponse `json:"user"`
}
