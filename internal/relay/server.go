package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/studyhive/studyhive/internal/logger"
	"github.com/studyhive/studyhive/pkg/apperror"
	"github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

// Client frame types
const (
	FrameJoin          = "join"
	FrameLeave         = "leave"
	FrameSendMessage   = "send_message"
	FrameDeleteMessage = "delete_message"
	FrameReact         = "react"
)

const actionTimeout = 10 * time.Second

// Actions performs the domain side of client frames. Successful actions
// publish their own events.
type Actions interface {
	CanJoin(ctx context.Context, userID, groupID int64) error
	SendMessage(ctx context.Context, userID, groupID int64, content string) error
	DeleteMessage(ctx context.Context, userID, messageID int64) error
	React(ctx context.Context, userID, messageID int64, reaction string) error
}

type frame struct {
	Type      string `json:"type"`
	GroupID   int64  `json:"group_id"`
	MessageID int64  `json:"message_id"`
	Content   string `json:"content"`
	Reaction  string `json:"reaction"`
}

// Server upgrades authenticated requests to WebSocket clients
type Server struct {
	hub      *Hub
	actions  Actions
	log      logger.Logger
	upgrader websocket.Upgrader
}

// NewServer creates the WebSocket endpoint. An empty origin list or "*"
// accepts any origin.
func NewServer(hub *Hub, actions Actions, log logger.Logger, allowedOrigins []string) *Server {
	return &Server{
		hub:     hub,
		actions: actions,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP handles GET /ws
// @Summary      Real-time chat relay
// @Description  Upgrades to a WebSocket. Client frames: join, leave, send_message, delete_message, react.
// @Tags         relay
// @Security     BearerAuth
// @Param        token query string false "Access token when headers cannot be set"
// @Success      101
// @Failure      401 {object} response.APIResponse
// @Router       /ws [get]
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		s.log.Warn("relay: websocket upgrade failed", err)
		return
	}

	c := newClient(userID, conn)
	go c.writePump()
	s.readPump(c)
}

// readPump reads client frames until the connection fails, then detaches
// the client from the hub.
func (s *Server) readPump(c *Client) {
	defer func() {
		s.hub.Unsubscribe(c)
		close(c.done)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.log.Warn("relay: unexpected close", err, map[string]interface{}{"user_id": c.userID})
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.reply(c, Event{Type: EventError, Error: "malformed frame"})
			continue
		}
		s.dispatch(c, f)
	}
}

func (s *Server) dispatch(c *Client, f frame) {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	var err error
	switch f.Type {
	case FrameJoin:
		if err = s.actions.CanJoin(ctx, c.userID, f.GroupID); err != nil {
			break
		}
		s.hub.Subscribe(f.GroupID, c)
		// an eviction between the check and Subscribe missed this client
		if err = s.actions.CanJoin(ctx, c.userID, f.GroupID); err != nil {
			s.hub.Unsubscribe(c)
			break
		}
		s.reply(c, Event{Type: EventJoined, GroupID: f.GroupID})
	case FrameLeave:
		groupID := s.hub.Room(c)
		s.hub.Unsubscribe(c)
		s.reply(c, Event{Type: EventLeft, GroupID: groupID})
	case FrameSendMessage:
		groupID := f.GroupID
		if groupID == 0 {
			groupID = s.hub.Room(c)
		}
		if groupID == 0 {
			err = apperror.New(apperror.KindValidation, "group_id is required")
			break
		}
		err = s.actions.SendMessage(ctx, c.userID, groupID, f.Content)
	case FrameDeleteMessage:
		err = s.actions.DeleteMessage(ctx, c.userID, f.MessageID)
	case FrameReact:
		err = s.actions.React(ctx, c.userID, f.MessageID, f.Reaction)
	default:
		err = apperror.New(apperror.KindValidation, "unknown frame type")
	}

	if err != nil {
		s.reply(c, Event{Type: EventError, GroupID: f.GroupID, Error: s.errorMessage(err, c)})
	}
}

func (s *Server) errorMessage(err error, c *Client) string {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperror.KindExternal {
			s.log.Error("relay: action failed", err, map[string]interface{}{"user_id": c.userID})
		}
		return appErr.Message
	}
	s.log.Error("relay: action failed", err, map[string]interface{}{"user_id": c.userID})
	return "internal server error"
}

// reply sends an event to one client only
func (s *Server) reply(c *Client, ev Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		s.log.Error("relay: failed to encode reply", err)
		return
	}
	c.enqueue(data)
}
