package course

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/studyhive/studyhive/internal/blob"
	"github.com/studyhive/studyhive/pkg/apperror"
)

type memRepository struct {
	mu      sync.Mutex
	nextID  int64
	courses map[int64]*Course
}

func newMemRepository() *memRepository {
	return &memRepository{courses: make(map[int64]*Course)}
}

func (m *memRepository) Create(ctx context.Context, c *Course) (*Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *c
	cp.ID = m.nextID
	cp.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Second)
	cp.UpdatedAt = cp.CreatedAt
	m.courses[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memRepository) GetByID(ctx context.Context, id int64) (*Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *memRepository) List(ctx context.Context, filter Filter) ([]*Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Course
	for _, c := range m.courses {
		if filter.AuthorID > 0 && c.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Category != "" && !contains(c.Categories, filter.Category) {
			continue
		}
		if filter.Tag != "" && !contains(c.Tags, filter.Tag) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memRepository) Update(ctx context.Context, c *Course) (*Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[c.ID]; !ok {
		return nil, nil
	}
	cp := *c
	cp.UpdatedAt = time.Now()
	m.courses[c.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.courses, id)
	return nil
}

// memStore is an in-memory blob.Store that can be told to fail releases
type memStore struct {
	mu         sync.Mutex
	n          int
	objects    map[string]string
	failDelete bool
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]string)}
}

func (s *memStore) Put(ctx context.Context, name, contentType string, data []byte) (*blob.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	key := fmt.Sprintf("obj-%d-%s", s.n, name)
	s.objects[key] = contentType
	return &blob.Object{Key: key, URL: "https://files.example.com/" + key}, nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return apperror.Wrap(apperror.KindExternal, "file storage service failure", errors.New("backend unavailable"))
	}
	delete(s.objects, key)
	return nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
