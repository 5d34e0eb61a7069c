package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/studyhive/studyhive/internal/logger"
	"github.com/studyhive/studyhive/pkg/apperror"
)

// Common errors
var (
	ErrNotificationNotFound = apperror.New(apperror.KindNotFound, "notification not found")
	ErrNotRecipient         = apperror.New(apperror.KindForbidden, "not the recipient of this notification")
)

// Roster resolves the members of a group
type Roster interface {
	MemberIDs(ctx context.Context, groupID int64) ([]int64, error)
}

// Service handles notification business logic
type Service struct {
	repo   Repository
	roster Roster
	log    logger.Logger
}

// NewService creates a new notification service
func NewService(repo Repository, roster Roster, log logger.Logger) *Service {
	return &Service{repo: repo, roster: roster, log: log}
}

// ListByRecipientID retrieves a page of the user's notifications
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks one of the user's notifications as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// notifyGroup tells every member except the actor. Failures are logged
// and never fail the caller.
func (s *Service) notifyGroup(ctx context.Context, groupID, actorID int64, message string, entity EntityType, entityID int64) {
	recipients, err := s.roster.MemberIDs(ctx, groupID)
	if err != nil {
		s.log.Error("notification: failed to resolve group members", err, map[string]interface{}{"group_id": groupID})
		return
	}

	entityType := string(entity)
	for _, id := range recipients {
		if id == actorID {
			continue
		}
		if _, err := s.repo.Create(ctx, id, message, &entityType, &entityID); err != nil {
			s.log.Error("notification: failed to notify member", err, map[string]interface{}{"group_id": groupID, "user_id": id})
		}
	}
}

// Helper methods for meeting notifications

const meetingTimeLayout = "Mon Jan 2, 15:04 MST"

// MeetingScheduled notifies the group of a new meeting
func (s *Service) MeetingScheduled(ctx context.Context, groupID, actorID, meetingID int64, at time.Time) {
	s.notifyGroup(ctx, groupID, actorID, fmt.Sprintf("A meeting was scheduled for %s", at.UTC().Format(meetingTimeLayout)), EntityMeeting, meetingID)
}

// MeetingRescheduled notifies the group of a moved meeting
func (s *Service) MeetingRescheduled(ctx context.Context, groupID, actorID, meetingID int64, at time.Time) {
	s.notifyGroup(ctx, groupID, actorID, fmt.Sprintf("A meeting was moved to %s", at.UTC().Format(meetingTimeLayout)), EntityMeeting, meetingID)
}

// MeetingCancelled notifies the group of a cancelled meeting
func (s *Service) MeetingCancelled(ctx context.Context, groupID, actorID, meetingID int64, at time.Time) {
	s.notifyGroup(ctx, groupID, actorID, fmt.Sprintf("The meeting on %s was cancelled", at.UTC().Format(meetingTimeLayout)), EntityGroup, groupID)
}
