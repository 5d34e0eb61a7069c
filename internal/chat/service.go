package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/studyhive/studyhive/internal/relay"
	"github.com/studyhive/studyhive/pkg/apperror"
)

// MaxContentLength is the longest accepted message, in characters
const MaxContentLength = 2000

const maxReactionLength = 32

// Common errors
var (
	ErrMessageNotFound  = apperror.New(apperror.KindNotFound, "message not found")
	ErrNotAuthor        = apperror.New(apperror.KindForbidden, "only the author can delete this message")
	ErrContentRequired  = apperror.New(apperror.KindValidation, "content is required")
	ErrContentTooLong   = apperror.New(apperror.KindValidation, "content must be at most 2000 characters")
	ErrReactionRequired = apperror.New(apperror.KindValidation, "reaction is required")
	ErrReactionTooLong  = apperror.New(apperror.KindValidation, "reaction must be at most 32 characters")
)

// Membership checks group membership
type Membership interface {
	RequireMember(ctx context.Context, groupID, userID int64) error
}

// Service handles chat business logic
type Service struct {
	repo    Repository
	members Membership
	events  relay.Publisher
}

// NewService creates a new chat service
func NewService(repo Repository, members Membership, events relay.Publisher) *Service {
	return &Service{repo: repo, members: members, events: events}
}

// Post stores a message and publishes it to the group's room
func (s *Service) Post(ctx context.Context, groupID, authorID int64, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	if err := s.members.RequireMember(ctx, groupID, authorID); err != nil {
		return nil, err
	}

	msg, err := s.repo.Create(ctx, &Message{GroupID: groupID, UserID: authorID, Content: content})
	if err != nil {
		return nil, err
	}
	if msg.Reactions == nil {
		msg.Reactions = []Reaction{}
	}

	s.events.Publish(ctx, relay.Event{Type: relay.EventMessageCreated, GroupID: groupID, Data: msg.ToResponse()})
	return msg, nil
}

// List returns the full history of a group, oldest first
func (s *Service) List(ctx context.Context, groupID, userID int64) ([]*Message, error) {
	if err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroup(ctx, groupID)
}

// Delete removes the caller's own message
func (s *Service) Delete(ctx context.Context, messageID, actorID int64) error {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.UserID != actorID {
		return ErrNotAuthor
	}

	if err := s.repo.Delete(ctx, messageID); err != nil {
		return err
	}

	s.events.Publish(ctx, relay.Event{
		Type:    relay.EventMessageDeleted,
		GroupID: msg.GroupID,
		Data:    &DeletedPayload{MessageID: msg.ID, GroupID: msg.GroupID},
	})
	return nil
}

// React sets the caller's reaction, replacing a previous one
func (s *Service) React(ctx context.Context, messageID, actorID int64, reaction string) ([]Reaction, error) {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		return nil, ErrReactionRequired
	}
	if utf8.RuneCountInString(reaction) > maxReactionLength {
		return nil, ErrReactionTooLong
	}

	msg, err := s.memberMessage(ctx, messageID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertReaction(ctx, messageID, actorID, reaction); err != nil {
		return nil, err
	}
	return s.reactionsChanged(ctx, msg, actorID, reaction)
}

// RemoveReaction clears the caller's reaction
func (s *Service) RemoveReaction(ctx context.Context, messageID, actorID int64) ([]Reaction, error) {
	msg, err := s.memberMessage(ctx, messageID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteReaction(ctx, messageID, actorID); err != nil {
		return nil, err
	}
	return s.reactionsChanged(ctx, msg, actorID, "")
}

func (s *Service) reactionsChanged(ctx context.Context, msg *Message, actorID int64, reaction string) ([]Reaction, error) {
	reactions, err := s.repo.ListReactions(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, relay.Event{
		Type:    relay.EventReactionUpdated,
		GroupID: msg.GroupID,
		Data: &ReactionPayload{
			MessageID: msg.ID,
			GroupID:   msg.GroupID,
			UserID:    actorID,
			Reaction:  reaction,
			Reactions: reactionResponses(reactions),
		},
	})
	return reactions, nil
}

func (s *Service) getMessage(ctx context.Context, messageID int64) (*Message, error) {
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

func (s *Service) memberMessage(ctx context.Context, messageID, userID int64) (*Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.members.RequireMember(ctx, msg.GroupID, userID); err != nil {
		return nil, err
	}
	return msg, nil
}
