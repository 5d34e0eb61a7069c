package group

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/studyhive/studyhive/internal/relay"
)

// memRepository is an in-memory Repository for service tests
type memRepository struct {
	mu      sync.RWMutex
	nextID  int64
	groups  map[int64]*Group
	members map[int64][]*Member // join order
	blocked map[int64]map[int64]time.Time
	users   map[int64]string
}

func newMemRepository() *memRepository {
	return &memRepository{
		groups:  make(map[int64]*Group),
		members: make(map[int64][]*Member),
		blocked: make(map[int64]map[int64]time.Time),
		users:   map[int64]string{1: "Alice", 2: "Bob", 3: "Carol"},
	}
}

func (m *memRepository) withCount(g *Group) *Group {
	c := *g
	c.MemberCount = len(m.members[g.ID])
	return &c
}

func (m *memRepository) Create(ctx context.Context, group *Group) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, g := range m.groups {
		if g.JoinCode == group.JoinCode {
			return nil, errJoinCodeTaken
		}
	}

	m.nextID++
	g := *group
	g.ID = m.nextID
	g.CreatedAt = time.Now()
	m.groups[g.ID] = &g
	m.members[g.ID] = []*Member{{GroupID: g.ID, UserID: g.HostID, Role: RoleHost, JoinedAt: time.Now()}}
	return m.withCount(&g), nil
}

func (m *memRepository) GetByID(ctx context.Context, id int64) (*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	return m.withCount(g), nil
}

func (m *memRepository) GetByJoinCode(ctx context.Context, code string) (*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, g := range m.groups {
		if g.JoinCode == code {
			return m.withCount(g), nil
		}
	}
	return nil, nil
}

func (m *memRepository) list(match func(*Group) bool) []*Group {
	var out []*Group
	for _, g := range m.groups {
		if match(g) {
			out = append(out, m.withCount(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRepository) ListByMember(ctx context.Context, userID int64) ([]*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.list(func(g *Group) bool { return m.indexOf(g.ID, userID) >= 0 }), nil
}

func (m *memRepository) ListPublic(ctx context.Context) ([]*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.list(func(g *Group) bool { return g.IsPublic }), nil
}

func (m *memRepository) ListHostedBy(ctx context.Context, userID int64) ([]*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.list(func(g *Group) bool { return g.HostID == userID }), nil
}

func (m *memRepository) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if req.IsPublic != nil {
		g.IsPublic = *req.IsPublic
	}
	return m.withCount(g), nil
}

func (m *memRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.groups, id)
	delete(m.members, id)
	delete(m.blocked, id)
	return nil
}

func (m *memRepository) indexOf(groupID, userID int64) int {
	for i, member := range m.members[groupID] {
		if member.UserID == userID {
			return i
		}
	}
	return -1
}

func (m *memRepository) GetMember(ctx context.Context, groupID, userID int64) (*Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(groupID, userID)
	if i < 0 {
		return nil, nil
	}
	c := *m.members[groupID][i]
	c.Name = m.users[userID]
	return &c, nil
}

func (m *memRepository) ListMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Member, 0, len(m.members[groupID]))
	for _, member := range m.members[groupID] {
		c := *member
		c.Name = m.users[member.UserID]
		out = append(out, &c)
	}
	return out, nil
}

func (m *memRepository) AddMember(ctx context.Context, groupID, userID int64, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blocked[groupID][userID]; ok {
		return ErrBlocked
	}
	if m.indexOf(groupID, userID) >= 0 {
		return ErrAlreadyMember
	}
	m.members[groupID] = append(m.members[groupID], &Member{GroupID: groupID, UserID: userID, Role: role, JoinedAt: time.Now()})
	return nil
}

func (m *memRepository) removeLocked(groupID, userID int64) {
	if i := m.indexOf(groupID, userID); i >= 0 {
		m.members[groupID] = append(m.members[groupID][:i], m.members[groupID][i+1:]...)
	}
}

func (m *memRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(groupID, userID)
	return nil
}

func (m *memRepository) SetRole(ctx context.Context, groupID, userID int64, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(groupID, userID)
	if i < 0 {
		return ErrMemberNotFound
	}
	m.members[groupID][i].Role = role
	return nil
}

func (m *memRepository) Block(ctx context.Context, groupID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(groupID, userID)
	if m.blocked[groupID] == nil {
		m.blocked[groupID] = make(map[int64]time.Time)
	}
	if _, ok := m.blocked[groupID][userID]; !ok {
		m.blocked[groupID][userID] = time.Now()
	}
	return nil
}

func (m *memRepository) IsBlocked(ctx context.Context, groupID, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.blocked[groupID][userID]
	return ok, nil
}

func (m *memRepository) ListBlocked(ctx context.Context, groupID int64) ([]*BlockedUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*BlockedUser
	for id, at := range m.blocked[groupID] {
		out = append(out, &BlockedUser{UserID: id, Name: m.users[id], BlockedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// recorder captures published relay events
type recorder struct {
	mu     sync.Mutex
	events []relay.Event
}

func (r *recorder) Publish(ctx context.Context, ev relay.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}
