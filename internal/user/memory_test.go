package user

import (
	"context"
	"sync"
	"time"
)

// memRepository is an in-memory Repository used by the tests
type memRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
}

func newMemRepository() *memRepository {
	return &memRepository{users: make(map[int64]*User)}
}

func (m *memRepository) Create(ctx context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, ErrEmailAlreadyInUse
		}
	}
	m.nextID++
	created := *u
	created.ID = m.nextID
	created.CreatedAt = time.Now().UTC()
	m.users[created.ID] = &created
	out := created
	return &out, nil
}

func (m *memRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (m *memRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memRepository) UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Interests != nil {
		u.Interests = req.Interests
	}
	out := *u
	return &out, nil
}

func (m *memRepository) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = &hash
	return nil
}

func (m *memRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}
