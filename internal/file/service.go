package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/studyhive/studyhive/internal/blob"
	"github.com/studyhive/studyhive/pkg/apperror"
)

// Common errors
var (
	ErrFileNotFound = apperror.New(apperror.KindNotFound, "file not found")
	ErrNotUploader  = apperror.New(apperror.KindForbidden, "you can only delete your own files")
	ErrFileTooLarge = apperror.New(apperror.KindValidation, "file exceeds the maximum upload size")
	ErrInvalidName  = apperror.New(apperror.KindValidation, "file name is invalid")
)

// Membership checks group membership
type Membership interface {
	RequireMember(ctx context.Context, groupID, userID int64) error
}

// Service handles group file business logic
type Service struct {
	repo     Repository
	members  Membership
	store    blob.Store
	maxBytes int64
}

// NewService creates a new file service. maxBytes bounds the decoded size.
func NewService(repo Repository, members Membership, store blob.Store, maxBytes int64) *Service {
	return &Service{repo: repo, members: members, store: store, maxBytes: maxBytes}
}

// MaxBytes returns the upload limit
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// List returns a group's files for its members
func (s *Service) List(ctx context.Context, groupID, userID int64) ([]*File, error) {
	if err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroup(ctx, groupID)
}

// Upload stores the content in the blob store and records the file
func (s *Service) Upload(ctx context.Context, userID int64, req *UploadRequest) (*File, error) {
	name := strings.TrimSpace(filepath.Base(req.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, ErrInvalidName
	}

	// base64 is 4/3 of the decoded size; reject before decoding
	if int64(len(req.FileData)) > s.maxBytes/3*4+1024 {
		return nil, ErrFileTooLarge
	}

	if err := s.members.RequireMember(ctx, req.GroupID, userID); err != nil {
		return nil, err
	}

	data, contentType, err := blob.DecodePayload(req.FileData)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	obj, err := s.store.Put(ctx, name, contentType, data)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.Create(ctx, &File{
		GroupID:    req.GroupID,
		UserID:     userID,
		Name:       name,
		StorageKey: obj.Key,
		URL:        obj.URL,
	})
	if err != nil {
		if releaseErr := s.store.Delete(ctx, obj.Key); releaseErr != nil {
			return nil, fmt.Errorf("%w (orphaned object %s: %v)", err, obj.Key, releaseErr)
		}
		return nil, err
	}
	return f, nil
}

// Delete releases the stored object, then removes the record. If the
// object cannot be released the record is kept and the call fails.
func (s *Service) Delete(ctx context.Context, fileID, userID int64) error {
	f, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrFileNotFound
	}
	if f.UserID != userID {
		return ErrNotUploader
	}

	// Releases are idempotent, so a record left behind by a failed delete
	// below is removed by retrying.
	if err := s.store.Delete(ctx, f.StorageKey); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("object released but record kept: %w", err)
	}
	return nil
}

// PurgeGroup releases the stored objects of every file in the group. The
// records go with the group. A failure aborts the group deletion with some
// objects possibly released; the next attempt releases the rest.
func (s *Service) PurgeGroup(ctx context.Context, groupID int64) error {
	files, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	return s.release(ctx, files)
}

// PurgeUploader releases the stored objects of every file the user
// uploaded. The records go with the account.
func (s *Service) PurgeUploader(ctx context.Context, userID int64) error {
	files, err := s.repo.ListByUploader(ctx, userID)
	if err != nil {
		return err
	}
	return s.release(ctx, files)
}

func (s *Service) release(ctx context.Context, files []*File) error {
	for _, f := range files {
		if err := s.store.Delete(ctx, f.StorageKey); err != nil {
			return err
		}
	}
	return nil
}
