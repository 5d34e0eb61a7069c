// Package relay delivers chat events to WebSocket clients grouped in
// per-group rooms. Publishing goes through a Broker so that several API
// instances can share rooms.
package relay

import (
	"context"
	"encoding/json"
)

// Event types sent to clients
const (
	EventMessageCreated  = "message.created"
	EventMessageDeleted  = "message.deleted"
	EventReactionUpdated = "message.reaction_updated"
	EventGroupDeleted    = "group.deleted"
	EventMemberRemoved   = "member.removed"
	EventJoined          = "joined"
	EventLeft            = "left"
	EventError           = "error"
)

// Event is a server frame. Data holds the payload; after crossing a broker
// it is a json.RawMessage.
type Event struct {
	Type    string      `json:"type"`
	GroupID int64       `json:"group_id,omitempty"`
	UserID  int64       `json:"user_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Publisher sends an event to every subscriber of ev.GroupID. Delivery is
// best-effort; failures are logged by the implementation.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

func encodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

func decodeEvent(data []byte) (Event, error) {
	var wire struct {
		Type    string          `json:"type"`
		GroupID int64           `json:"group_id"`
		UserID  int64           `json:"user_id"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Event{}, err
	}

	ev := Event{Type: wire.Type, GroupID: wire.GroupID, UserID: wire.UserID, Error: wire.Error}
	if len(wire.Data) > 0 {
		ev.Data = wire.Data
	}
	return ev, nil
}
