package relay

import (
	"sync"

	"github.com/studyhive/studyhive/internal/logger"
)

// Hub is the room registry: group ID to the set of subscribed clients.
// A client is subscribed to at most one room.
type Hub struct {
	mu    sync.Mutex
	rooms map[int64]map[*Client]struct{}
	log   logger.Logger
}

// NewHub creates an empty registry
func NewHub(log logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[int64]map[*Client]struct{}),
		log:   log,
	}
}

// Subscribe moves the client into the room of groupID
func (h *Hub) Subscribe(groupID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(c)

	room, ok := h.rooms[groupID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[groupID] = room
	}
	room[c] = struct{}{}
	c.groupID = groupID
}

// Unsubscribe removes the client from its room, if any
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if c.groupID == 0 {
		return
	}
	if room, ok := h.rooms[c.groupID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.groupID)
		}
	}
	c.groupID = 0
}

// Room returns the group the client is subscribed to, 0 if none
func (h *Hub) Room(c *Client) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return c.groupID
}

// RoomSize returns the number of clients subscribed to groupID
func (h *Hub) RoomSize(groupID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.rooms[groupID])
}

// Broadcast delivers ev to every client in the room of ev.GroupID,
// including the sender. Clients whose queue is full miss the event.
//
// A member.removed event also evicts that user's clients from the room and
// group.deleted empties the room.
func (h *Hub) Broadcast(ev Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		h.log.Error("relay: failed to encode event", err, map[string]interface{}{"type": ev.Type})
		return
	}

	h.mu.Lock()
	subscribers := make([]*Client, 0, len(h.rooms[ev.GroupID]))
	for c := range h.rooms[ev.GroupID] {
		subscribers = append(subscribers, c)
	}
	h.mu.Unlock()

	for _, c := range subscribers {
		if !c.enqueue(data) {
			h.log.Warn("relay: client queue full, event dropped", map[string]interface{}{
				"client": c.id, "group_id": ev.GroupID, "type": ev.Type,
			})
		}
	}

	switch ev.Type {
	case EventGroupDeleted:
		h.evict(ev.GroupID, func(*Client) bool { return true })
	case EventMemberRemoved:
		h.evict(ev.GroupID, func(c *Client) bool { return c.userID == ev.UserID })
	}
}

func (h *Hub) evict(groupID int64, match func(*Client) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[groupID] {
		if match(c) {
			h.removeLocked(c)
		}
	}
}
