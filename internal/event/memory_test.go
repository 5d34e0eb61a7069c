package event

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memRepository struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]*Event
}

func newMemRepository() *memRepository {
	return &memRepository{events: make(map[int64]*Event)}
}

func (m *memRepository) Create(ctx context.Context, e *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := *e
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.events[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memRepository) Get(ctx context.Context, id, userID int64) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (m *memRepository) ListByUser(ctx context.Context, userID int64) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Event
	for _, e := range m.events {
		if e.UserID == userID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].DueTime < out[j].DueTime
	})
	return out, nil
}

func (m *memRepository) Update(ctx context.Context, e *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[e.ID]
	if !ok || cur.UserID != e.UserID {
		return nil, nil
	}
	c := *e
	c.CreatedAt = cur.CreatedAt
	m.events[e.ID] = &c
	out := c
	return &out, nil
}

func (m *memRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	delete(m.events, id)
	return true, nil
}
