package user

import (
	"context"
	"strings"

	"github.com/studyhive/studyhive/pkg/apperror"
)

// Common errors
var (
	ErrUserNotFound         = apperror.New(apperror.KindNotFound, "user not found")
	ErrEmailAlreadyInUse    = apperror.New(apperror.KindConflict, "email already in use")
	ErrInvalidCredentials   = apperror.New(apperror.KindUnauthorized, "invalid email or password")
	ErrWrongPassword        = apperror.New(apperror.KindValidation, "current password is incorrect")
	ErrCurrentPasswordEmpty = apperror.New(apperror.KindValidation, "current password is required to change the password")
)

// Repository is the user persistence contract
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest) (*User, error)
	SetPasswordHash(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

// DeleteHook runs before a user account is removed. A failing hook aborts the deletion.
type DeleteHook func(ctx context.Context, userID int64) error

// Service handles user business logic
type Service struct {
	repo  Repository
	hooks []DeleteHook
}

// NewService creates a new user service with repository dependency injected
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// OnDelete registers a hook run before account deletion, in registration order
func (s *Service) OnDelete(hook DeleteHook) {
	s.hooks = append(s.hooks, hook)
}

// Register creates a password account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: &hash,
		Interests:    req.Interests,
	})
}

// Authenticate checks an email/password pair
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile modifies name, email or interests
func (s *Service) UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest) (*User, error) {
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email

		other, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, ErrEmailAlreadyInUse
		}
	}

	user, err := s.repo.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetPassword adds a password to an account without one, or changes the
// existing password after checking the current one.
func (s *Service) SetPassword(ctx context.Context, id int64, req *PasswordRequest) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.HasPassword() {
		if req.CurrentPassword == "" {
			return ErrCurrentPasswordEmpty
		}
		if !user.CheckPassword(req.CurrentPassword) {
			return ErrWrongPassword
		}
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.SetPasswordHash(ctx, id, hash)
}

// ResetPassword overwrites the password of the account with the given email
func (s *Service) ResetPassword(ctx context.Context, email, password string) error {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.repo.SetPasswordHash(ctx, user.ID, hash)
}

// DeleteAccount runs the registered hooks then removes the user
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	for _, hook := range s.hooks {
		if err := hook(ctx, id); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
