package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/studyhive/studyhive/internal/relay"
	"github.com/studyhive/studyhive/pkg/apperror"
)

type memRepository struct {
	mu        sync.RWMutex
	nextID    int64
	messages  map[int64]*Message
	reactions map[int64]map[int64]Reaction
	clock     time.Time
}

func newMemRepository() *memRepository {
	return &memRepository{
		messages:  make(map[int64]*Message),
		reactions: make(map[int64]map[int64]Reaction),
		clock:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic
func (m *memRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memRepository) reactionsOf(id int64) []Reaction {
	out := []Reaction{}
	for _, r := range m.reactions[id] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memRepository) Create(ctx context.Context, msg *Message) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	c := *msg
	c.ID = m.nextID
	c.CreatedAt = m.tick()
	m.messages[c.ID] = &c

	out := c
	out.Reactions = []Reaction{}
	return &out, nil
}

func (m *memRepository) GetByID(ctx context.Context, id int64) (*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msg, ok := m.messages[id]
	if !ok {
		return nil, nil
	}
	c := *msg
	c.Reactions = m.reactionsOf(id)
	return &c, nil
}

func (m *memRepository) ListByGroup(ctx context.Context, groupID int64) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Message
	for _, msg := range m.messages {
		if msg.GroupID == groupID {
			c := *msg
			c.Reactions = m.reactionsOf(msg.ID)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.messages, id)
	delete(m.reactions, id)
	return nil
}

func (m *memRepository) UpsertReaction(ctx context.Context, messageID, userID int64, reaction string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reactions[messageID] == nil {
		m.reactions[messageID] = make(map[int64]Reaction)
	}
	m.reactions[messageID][userID] = Reaction{UserID: userID, Reaction: reaction, CreatedAt: m.tick()}
	return nil
}

func (m *memRepository) DeleteReaction(ctx context.Context, messageID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.reactions[messageID], userID)
	return nil
}

func (m *memRepository) ListReactions(ctx context.Context, messageID int64) ([]Reaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.reactionsOf(messageID), nil
}

// memberSet is a fixed membership table: group ID to user IDs
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

type recorder struct {
	mu     sync.Mutex
	events []relay.Event
}

func (r *recorder) Publish(ctx context.Context, ev relay.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) last() relay.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
