package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *memRepository) {
	t.Helper()
	repo := newMemRepository()
	return NewService(repo), repo
}

func register(t *testing.T, svc *Service, name, email string) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), &RegisterRequest{Name: name, Email: email, Password: "password123"})
	require.NoError(t, err)
	return u
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	u := register(t, svc, " Ada ", "Ada@Example.com")
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.True(t, u.HasPassword())

	_, err := svc.Register(ctx, &RegisterRequest{Name: "Other", Email: "ada@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)

	got, err := svc.Authenticate(ctx, "ADA@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	ada := register(t, svc, "Ada", "ada@example.com")
	register(t, svc, "Bob", "bob@example.com")

	name := "Ada L."
	updated, err := svc.UpdateProfile(ctx, ada.ID, &UpdateProfileRequest{Name: &name, Interests: []string{"algorithms"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, []string{"algorithms"}, updated.Interests)

	taken := "BOB@example.com"
	_, err = svc.UpdateProfile(ctx, ada.ID, &UpdateProfileRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)

	same := "ada@example.com"
	_, err = svc.UpdateProfile(ctx, ada.ID, &UpdateProfileRequest{Email: &same})
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, 999, &UpdateProfileRequest{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetPassword(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	// account created through an external identity has no password
	googleID := "g-123"
	ext, err := repo.Create(ctx, &User{Name: "Ext", Email: "ext@example.com", GoogleID: &googleID})
	require.NoError(t, err)
	assert.False(t, ext.HasPassword())

	require.NoError(t, svc.SetPassword(ctx, ext.ID, &PasswordRequest{NewPassword: "firstpass1"}))
	_, err = svc.Authenticate(ctx, "ext@example.com", "firstpass1")
	require.NoError(t, err)

	err = svc.SetPassword(ctx, ext.ID, &PasswordRequest{NewPassword: "secondpass"})
	assert.ErrorIs(t, err, ErrCurrentPasswordEmpty)

	err = svc.SetPassword(ctx, ext.ID, &PasswordRequest{CurrentPassword: "nope", NewPassword: "secondpass"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.SetPassword(ctx, ext.ID, &PasswordRequest{CurrentPassword: "firstpass1", NewPassword: "secondpass"}))
	_, err = svc.Authenticate(ctx, "ext@example.com", "secondpass")
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	register(t, svc, "Ada", "ada@example.com")

	require.NoError(t, svc.ResetPassword(ctx, "ADA@example.com", "brandnew99"))
	_, err := svc.Authenticate(ctx, "ada@example.com", "brandnew99")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "ghost@example.com", "brandnew99"), ErrUserNotFound)
}

func TestDeleteAccountRunsHooks(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	ada := register(t, svc, "Ada", "ada@example.com")

	var calls []string
	svc.OnDelete(func(ctx context.Context, userID int64) error {
		calls = append(calls, "groups")
		return nil
	})
	failing := errors.New("blob store down")
	svc.OnDelete(func(ctx context.Context, userID int64) error {
		calls = append(calls, "files")
		return failing
	})

	err := svc.DeleteAccount(ctx, ada.ID)
	assert.ErrorIs(t, err, failing)
	assert.Equal(t, []string{"groups", "files"}, calls)
	still, _ := repo.GetByID(ctx, ada.ID)
	assert.NotNil(t, still, "a failing hook must keep the account")

	svc.hooks = svc.hooks[:1]
	require.NoError(t, svc.DeleteAccount(ctx, ada.ID))
	gone, _ := repo.GetByID(ctx, ada.ID)
	assert.Nil(t, gone)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, ada.ID), ErrUserNotFound)
}
