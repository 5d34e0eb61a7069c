package event

import (
	"context"
	"strings"
	"time"

	"github.com/studyhive/studyhive/pkg/apperror"
)

// Common errors
var (
	ErrEventNotFound = apperror.New(apperror.KindNotFound, "event not found")
	ErrInvalidDate   = apperror.New(apperror.KindValidation, "due_date must be formatted as YYYY-MM-DD")
	ErrInvalidTime   = apperror.New(apperror.KindValidation, "due_time must be formatted as HH:MM")
)

// Service handles calendar event business logic
type Service struct {
	repo Repository
}

// NewService creates a new event service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func fromRequest(userID int64, req *EventRequest) (*Event, error) {
	date, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	clock, err := time.Parse("15:04", req.DueTime)
	if err != nil {
		return nil, ErrInvalidTime
	}

	t := Type(req.Type)
	if t == "" {
		t = TypeHomework
	}

	return &Event{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		DueDate:     date,
		DueTime:     clock.Format("15:04"),
		Type:        t,
		GroupLabel:  req.GroupLabel,
		Description: req.Description,
		Status:      req.Status,
	}, nil
}

// List returns the user's events
func (s *Service) List(ctx context.Context, userID int64) ([]*Event, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of the user's events
func (s *Service) Get(ctx context.Context, id, userID int64) (*Event, error) {
	e, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// Create adds an event to the user's calendar
func (s *Service) Create(ctx context.Context, userID int64, req *EventRequest) (*Event, error) {
	e, err := fromRequest(userID, req)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, e)
}

// Update replaces one of the user's events
func (s *Service) Update(ctx context.Context, id, userID int64, req *EventRequest) (*Event, error) {
	e, err := fromRequest(userID, req)
	if err != nil {
		return nil, err
	}
	e.ID = id

	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrEventNotFound
	}
	return updated, nil
}

// Delete removes one of the user's events
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	found, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrEventNotFound
	}
	return nil
}
