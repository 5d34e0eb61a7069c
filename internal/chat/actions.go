package chat

import (
	"context"

	"github.com/studyhive/studyhive/internal/relay"
)

// RelayActions serves WebSocket client frames with the chat service
type RelayActions struct {
	service *Service
}

var _ relay.Actions = (*RelayActions)(nil)

// NewRelayActions creates the frame handler for the relay server
func NewRelayActions(service *Service) *RelayActions {
	return &RelayActions{service: service}
}

func (a *RelayActions) CanJoin(ctx context.Context, userID, groupID int64) error {
	return a.service.members.RequireMember(ctx, groupID, userID)
}

func (a *RelayActions) SendMessage(ctx context.Context, userID, groupID int64, content string) error {
	_, err := a.service.Post(ctx, groupID, userID, content)
	return err
}

func (a *RelayActions) DeleteMessage(ctx context.Context, userID, messageID int64) error {
	return a.service.Delete(ctx, messageID, userID)
}

func (a *RelayActions) React(ctx context.Context, userID, messageID int64, reaction string) error {
	_, err := a.service.React(ctx, messageID, userID, reaction)
	return err
}
