package meeting

import (
	"context"
	"time"

	"github.com/studyhive/studyhive/pkg/apperror"
)

// Common errors
var (
	ErrMeetingNotFound = apperror.New(apperror.KindNotFound, "meeting not found")
	ErrInvalidTime     = apperror.New(apperror.KindValidation, "scheduled_at must be an RFC 3339 date-time")
)

// Groups answers the membership questions meetings need
type Groups interface {
	RequireMember(ctx context.Context, groupID, userID int64) error
	RequireHost(ctx context.Context, groupID, userID int64) error
}

// Notifier tells group members about schedule changes
type Notifier interface {
	MeetingScheduled(ctx context.Context, groupID, actorID, meetingID int64, at time.Time)
	MeetingRescheduled(ctx context.Context, groupID, actorID, meetingID int64, at time.Time)
	MeetingCancelled(ctx context.Context, groupID, actorID, meetingID int64, at time.Time)
}

// Service handles meeting business logic
type Service struct {
	repo   Repository
	groups Groups
	notify Notifier
}

// NewService creates a new meeting service
func NewService(repo Repository, groups Groups, notify Notifier) *Service {
	return &Service{repo: repo, groups: groups, notify: notify}
}

func parseTime(s string) (time.Time, error) {
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return at.UTC(), nil
}

// List returns the group's meetings for members
func (s *Service) List(ctx context.Context, groupID, userID int64) ([]*Meeting, error) {
	if err := s.groups.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroup(ctx, groupID)
}

// Create schedules a meeting; host only
func (s *Service) Create(ctx context.Context, groupID, userID int64, req *MeetingRequest) (*Meeting, error) {
	at, err := parseTime(req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if err := s.groups.RequireHost(ctx, groupID, userID); err != nil {
		return nil, err
	}

	m, err := s.repo.Create(ctx, groupID, at)
	if err != nil {
		return nil, err
	}
	s.notify.MeetingScheduled(ctx, groupID, userID, m.ID, m.ScheduledAt)
	return m, nil
}

// Update reschedules a meeting; host only
func (s *Service) Update(ctx context.Context, meetingID, userID int64, req *MeetingRequest) (*Meeting, error) {
	at, err := parseTime(req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if _, err := s.hostMeeting(ctx, meetingID, userID); err != nil {
		return nil, err
	}

	m, err := s.repo.Update(ctx, meetingID, at)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMeetingNotFound
	}
	s.notify.MeetingRescheduled(ctx, m.GroupID, userID, m.ID, m.ScheduledAt)
	return m, nil
}

// Delete cancels a meeting; host only
func (s *Service) Delete(ctx context.Context, meetingID, userID int64) error {
	m, err := s.hostMeeting(ctx, meetingID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, meetingID); err != nil {
		return err
	}
	s.notify.MeetingCancelled(ctx, m.GroupID, userID, m.ID, m.ScheduledAt)
	return nil
}

func (s *Service) hostMeeting(ctx context.Context, meetingID, userID int64) (*Meeting, error) {
	m, err := s.repo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMeetingNotFound
	}
	if err := s.groups.RequireHost(ctx, m.GroupID, userID); err != nil {
		return nil, err
	}
	return m, nil
}
