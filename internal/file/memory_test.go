package file

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
	mu        sync.RWMutex
	nextID    int64
	files     map[int64]*File
	deleteErr error
}

func newMemRepository() *memRepository {
	return &memRepository{files: make(map[int64]*File)}
}

func (m *memRepository) Create(ctx context.Context, f *File) (*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	c := *f
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.files[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memRepository) GetByID(ctx context.Context, id int64) (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[id]
	if !ok {
		return nil, nil
	}
	c := *f
	return &c, nil
}

func (m *memRepository) filter(match func(*File) bool) []*File {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*File
	for _, f := range m.files {
		if match(f) {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memRepository) ListByGroup(ctx context.Context, groupID int64) ([]*File, error) {
	return m.filter(func(f *File) bool { return f.GroupID == groupID }), nil
}

func (m *memRepository) ListByUploader(ctx context.Context, userID int64) ([]*File, error) {
	return m.filter(func(f *File) bool { return f.UserID == userID }), nil
}

func (m *memRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, id)
	return nil
}

// memStore is an in-memory blob.Store that can be told to fail releases
type memStore struct {
	mu         sync.Mutex
	n          int
	objects    map[string][]byte
	failDelete bool
	failKey    string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Put(ctx context.Context, name, contentType string, data []byte) (*blob.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++
	key := fmt.Sprintf("obj-%d", s.n)
	s.objects[key] = data
	return &blob.Object{Key: key, URL: "https://files.example.com/" + key}, nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failDelete || key == s.failKey {
		return apperror.Wrap(apperror.KindExternal, "file storage service failure", errors.New("quota exceeded"))
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

type memberSet map[int64][]int64

var errNotMember = apperror.New(apperror.KindForbidden, "not a member of this group")

func (s memberSet) RequireMember(ctx context.Context, groupID, userID int64) error {
	for _, id := range s[groupID] {
		if id == userID {
			return nil
		}
	}
	return errNotMember
}
