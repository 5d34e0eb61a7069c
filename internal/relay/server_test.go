package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhive/studyhive/pkg/apperror"
	"github.com/studyhive/studyhive/pkg/middleware"
)

type idVerifier struct{}

func (idVerifier) Verify(token string) (int64, error) {
	return strconv.ParseInt(token, 10, 64)
}

type fakeActions struct {
	publisher Publisher
	members   map[int64][]int64
	// checked runs after each successful membership check
	checked func(userID, groupID int64)
}

func (a *fakeActions) CanJoin(ctx context.Context, userID, groupID int64) error {
	for _, id := range a.members[groupID] {
		if id == userID {
			if a.checked != nil {
				a.checked(userID, groupID)
			}
			return nil
		}
	}
	return apperror.New(apperror.KindForbidden, "not a member of this group")
}

func (a *fakeActions) SendMessage(ctx context.Context, userID, groupID int64, content string) error {
	a.publisher.Publish(ctx, Event{
		Type:    EventMessageCreated,
		GroupID: groupID,
		Data:    map[string]interface{}{"user_id": userID, "content": content},
	})
	return nil
}

func (a *fakeActions) DeleteMessage(ctx context.Context, userID, messageID int64) error {
	return apperror.New(apperror.KindNotFound, "message not found")
}

func (a *fakeActions) React(ctx context.Context, userID, messageID int64, reaction string) error {
	return errors.New("connection reset")
}

type wsEvent struct {
	Type    string          `json:"type"`
	GroupID int64           `json:"group_id"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(testLogger())
	actions := &fakeActions{publisher: NewLocalBroker(hub), members: map[int64][]int64{1: {1, 2}}}
	srv := NewServer(hub, actions, testLogger(), nil)

	ts := httptest.NewServer(middleware.Authenticator(idVerifier{})(srv))
	t.Cleanup(ts.Close)
	return ts, hub
}

func dial(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, f map[string]interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(f))
}

func next(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev wsEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestServerRejectsMissingToken(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServerRelaysToRoom(t *testing.T) {
	ts, hub := newTestServer(t)
	alice, bob, mallory := dial(t, ts, "1"), dial(t, ts, "2"), dial(t, ts, "3")

	send(t, alice, map[string]interface{}{"type": "join", "group_id": 1})
	assert.Equal(t, EventJoined, next(t, alice).Type)
	send(t, bob, map[string]interface{}{"type": "join", "group_id": 1})
	assert.Equal(t, EventJoined, next(t, bob).Type)

	send(t, mallory, map[string]interface{}{"type": "join", "group_id": 1})
	ev := next(t, mallory)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "not a member of this group", ev.Error)

	send(t, alice, map[string]interface{}{"type": "send_message", "content": "hello"})
	for _, conn := range []*websocket.Conn{alice, bob} {
		ev := next(t, conn)
		assert.Equal(t, EventMessageCreated, ev.Type)
		assert.Equal(t, int64(1), ev.GroupID)
		assert.JSONEq(t, `{"user_id":1,"content":"hello"}`, string(ev.Data))
	}

	send(t, bob, map[string]interface{}{"type": "delete_message", "message_id": 99})
	assert.Equal(t, "message not found", next(t, bob).Error)

	// unclassified failures are not leaked
	send(t, bob, map[string]interface{}{"type": "react", "message_id": 99, "reaction": "like"})
	assert.Equal(t, "internal server error", next(t, bob).Error)

	send(t, bob, map[string]interface{}{"type": "leave"})
	assert.Equal(t, EventLeft, next(t, bob).Type)
	assert.Equal(t, 1, hub.RoomSize(1))

	send(t, bob, map[string]interface{}{"type": "send_message", "content": "anyone?"})
	assert.Equal(t, "group_id is required", next(t, bob).Error)

	send(t, bob, map[string]interface{}{"type": "shout"})
	assert.Equal(t, "unknown frame type", next(t, bob).Error)
}

func TestServerDetachesClosedClients(t *testing.T) {
	ts, hub := newTestServer(t)
	alice := dial(t, ts, "1")

	send(t, alice, map[string]interface{}{"type": "join", "group_id": 1})
	require.Equal(t, EventJoined, next(t, alice).Type)
	require.Equal(t, 1, hub.RoomSize(1))

	alice.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize(1) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServerJoinLosesToConcurrentRemoval(t *testing.T) {
	hub := NewHub(testLogger())
	actions := &fakeActions{publisher: NewLocalBroker(hub), members: map[int64][]int64{1: {1, 2}}}
	// bob is removed right after his membership check passes
	actions.checked = func(userID, groupID int64) {
		if userID == 2 {
			actions.members[groupID] = []int64{1}
		}
	}
	ts := httptest.NewServer(middleware.Authenticator(idVerifier{})(NewServer(hub, actions, testLogger(), nil)))
	t.Cleanup(ts.Close)

	alice, bob := dial(t, ts, "1"), dial(t, ts, "2")
	send(t, alice, map[string]interface{}{"type": "join", "group_id": 1})
	assert.Equal(t, EventJoined, next(t, alice).Type)

	send(t, bob, map[string]interface{}{"type": "join", "group_id": 1})
	ev := next(t, bob)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "not a member of this group", ev.Error)
	assert.Equal(t, 1, hub.RoomSize(1))
}
