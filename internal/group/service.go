package group

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/studyhive/studyhive/internal/relay"
	"github.com/studyhive/studyhive/pkg/apperror"
)

// Common errors
var (
	ErrGroupNotFound   = apperror.New(apperror.KindNotFound, "group not found")
	ErrMemberNotFound  = apperror.New(apperror.KindNotFound, "member not found")
	ErrUserNotFound    = apperror.New(apperror.KindNotFound, "user not found")
	ErrAlreadyMember   = apperror.New(apperror.KindConflict, "user is already a member of this group")
	ErrBlocked         = apperror.New(apperror.KindForbidden, "you are blocked from this group")
	ErrNotHost         = apperror.New(apperror.KindForbidden, "only the group host can perform this action")
	ErrNotMember       = apperror.New(apperror.KindForbidden, "not a member of this group")
	ErrHostTarget      = apperror.New(apperror.KindValidation, "the host cannot be removed from the group")
	ErrHostCannotLeave = apperror.New(apperror.KindValidation, "the host cannot leave the group, delete it instead")
	ErrInvalidRole     = apperror.New(apperror.KindValidation, "role must be member or moderator")
)

const (
	joinCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	joinCodeLength   = 8
	maxCodeAttempts  = 5
)

// DeleteHook runs before a group is deleted. A failing hook aborts the deletion.
type DeleteHook func(ctx context.Context, groupID int64) error

// Service handles group business logic
type Service struct {
	repo    Repository
	events  relay.Publisher
	hooks   []DeleteHook
	newCode func() (string, error)
}

// NewService creates a new group service
func NewService(repo Repository, events relay.Publisher) *Service {
	return &Service{repo: repo, events: events, newCode: generateJoinCode}
}

// OnDelete registers a hook run before group deletion
func (s *Service) OnDelete(hook DeleteHook) {
	s.hooks = append(s.hooks, hook)
}

func generateJoinCode() (string, error) {
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	var sb strings.Builder
	for i := 0; i < joinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		sb.WriteByte(joinCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// Create creates a new group with the creator as host and sole member
func (s *Service) Create(ctx context.Context, hostID int64, req *CreateGroupRequest) (*Group, error) {
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}

		group, err := s.repo.Create(ctx, &Group{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			IsPublic:    isPublic,
			JoinCode:    code,
			HostID:      hostID,
		})
		if errors.Is(err, errJoinCodeTaken) {
			continue
		}
		return group, err
	}

	return nil, fmt.Errorf("no free join code after %d attempts", maxCodeAttempts)
}

// Join adds the user to the group identified by the code
func (s *Service) Join(ctx context.Context, userID int64, code string) (*Group, error) {
	group, err := s.repo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	blocked, err := s.repo.IsBlocked(ctx, group.ID, userID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	member, err := s.repo.GetMember(ctx, group.ID, userID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, ErrAlreadyMember
	}

	if err := s.repo.AddMember(ctx, group.ID, userID, RoleMember); err != nil {
		return nil, err
	}

	return s.getGroup(ctx, group.ID)
}

// RemoveMember removes a member; the removed user may rejoin with the code
func (s *Service) RemoveMember(ctx context.Context, actorID int64, req *MemberActionRequest) error {
	group, err := s.hostGroupByCode(ctx, req.JoinCode, actorID)
	if err != nil {
		return err
	}
	if req.UserID == group.HostID {
		return ErrHostTarget
	}

	member, err := s.repo.GetMember(ctx, group.ID, req.UserID)
	if err != nil {
		return err
	}
	if member == nil {
		return nil
	}

	if err := s.repo.RemoveMember(ctx, group.ID, req.UserID); err != nil {
		return err
	}
	s.memberRemoved(ctx, group.ID, req.UserID)
	return nil
}

// BlockMember removes the target and prevents them from rejoining
func (s *Service) BlockMember(ctx context.Context, actorID int64, req *MemberActionRequest) error {
	group, err := s.hostGroupByCode(ctx, req.JoinCode, actorID)
	if err != nil {
		return err
	}
	if req.UserID == group.HostID {
		return ErrHostTarget
	}

	if err := s.repo.Block(ctx, group.ID, req.UserID); err != nil {
		return err
	}
	s.memberRemoved(ctx, group.ID, req.UserID)
	return nil
}

// SetRole changes a non-host member's role. The host's role never changes.
func (s *Service) SetRole(ctx context.Context, actorID int64, req *SetRoleRequest) error {
	group, err := s.hostGroupByCode(ctx, req.JoinCode, actorID)
	if err != nil {
		return err
	}
	if !req.Role.Assignable() {
		return ErrInvalidRole
	}
	if req.UserID == group.HostID {
		return nil
	}

	return s.repo.SetRole(ctx, group.ID, req.UserID, req.Role)
}

// Leave removes the user from the group
func (s *Service) Leave(ctx context.Context, groupID, userID int64) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.HostID == userID {
		return ErrHostCannotLeave
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}
	s.memberRemoved(ctx, groupID, userID)
	return nil
}

// Get returns a group visible to the user: public groups and groups the
// user belongs to. Private groups are hidden from non-members.
func (s *Service) Get(ctx context.Context, groupID, userID int64) (*Group, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.IsPublic {
		return group, nil
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// ListMembers returns the members of a visible group with their identities
func (s *Service) ListMembers(ctx context.Context, groupID, userID int64) ([]*Member, error) {
	if _, err := s.Get(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, groupID)
}

// MemberIDs returns the ids of every member of a group
func (s *Service) MemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids, nil
}

// ListBlocked returns the block list; host only
func (s *Service) ListBlocked(ctx context.Context, groupID, actorID int64) ([]*BlockedUser, error) {
	if err := s.RequireHost(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListBlocked(ctx, groupID)
}

// ListForUser returns the groups the user belongs to
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*Group, error) {
	return s.repo.ListByMember(ctx, userID)
}

// ListPublic returns every public group
func (s *Service) ListPublic(ctx context.Context) ([]*Group, error) {
	return s.repo.ListPublic(ctx)
}

// Update edits a group; host only
func (s *Service) Update(ctx context.Context, groupID, actorID int64, req *UpdateGroupRequest) (*Group, error) {
	if err := s.RequireHost(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	group, err := s.repo.Update(ctx, groupID, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// Delete removes a group; host only
func (s *Service) Delete(ctx context.Context, groupID, actorID int64) error {
	if err := s.RequireHost(ctx, groupID, actorID); err != nil {
		return err
	}
	return s.delete(ctx, groupID)
}

// DeleteHostedBy deletes every group the user hosts. Used when the account
// is removed.
func (s *Service) DeleteHostedBy(ctx context.Context, userID int64) error {
	groups, err := s.repo.ListHostedBy(ctx, userID)
	if err != nil {
		return err
	}
	for _, group := range groups {
		if err := s.delete(ctx, group.ID); err != nil {
			return fmt.Errorf("failed to delete group %d: %w", group.ID, err)
		}
	}
	return nil
}

func (s *Service) delete(ctx context.Context, groupID int64) error {
	for _, hook := range s.hooks {
		if err := hook(ctx, groupID); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, groupID); err != nil {
		return err
	}

	s.events.Publish(ctx, relay.Event{Type: relay.EventGroupDeleted, GroupID: groupID})
	return nil
}

// IsMember reports whether the user belongs to the group
func (s *Service) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// IsHost reports whether the user hosts the group
func (s *Service) IsHost(ctx context.Context, groupID, userID int64) (bool, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	return group.HostID == userID, nil
}

// RequireMember fails with ErrGroupNotFound or ErrNotMember
func (s *Service) RequireMember(ctx context.Context, groupID, userID int64) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}

	ok, err := s.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

// RequireHost fails with ErrGroupNotFound or ErrNotHost
func (s *Service) RequireHost(ctx context.Context, groupID, userID int64) error {
	ok, err := s.IsHost(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotHost
	}
	return nil
}

func (s *Service) getGroup(ctx context.Context, groupID int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (s *Service) hostGroupByCode(ctx context.Context, code string, actorID int64) (*Group, error) {
	group, err := s.repo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if group.HostID != actorID {
		return nil, ErrNotHost
	}
	return group, nil
}

func (s *Service) memberRemoved(ctx context.Context, groupID, userID int64) {
	s.events.Publish(ctx, relay.Event{Type: relay.EventMemberRemoved, GroupID: groupID, UserID: userID})
}
