package course

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/studyhive/studyhive/internal/blob"
	"github.com/studyhive/studyhive/pkg/apperror"
)

// Common errors
var (
	ErrCourseNotFound  = apperror.New(apperror.KindNotFound, "course not found")
	ErrNotAuthor       = apperror.New(apperror.KindForbidden, "only the author can modify this course")
	ErrPayloadTooLarge = apperror.New(apperror.KindValidation, "attachment exceeds the maximum upload size")
)

// Service handles course catalog business logic
type Service struct {
	repo     Repository
	store    blob.Store
	maxBytes int64
}

// NewService creates a new course service. maxBytes bounds each decoded attachment.
func NewService(repo Repository, store blob.Store, maxBytes int64) *Service {
	return &Service{repo: repo, store: store, maxBytes: maxBytes}
}

// List returns the catalog. Every authenticated user sees every course.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Course, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Tag = strings.TrimSpace(filter.Tag)
	return s.repo.List(ctx, filter)
}

// Get returns a course
func (s *Service) Get(ctx context.Context, id int64) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

// Create stores the attachments and records the course
func (s *Service) Create(ctx context.Context, authorID int64, req *CourseRequest) (*Course, error) {
	c := &Course{AuthorID: authorID}
	applyFields(c, req)

	var uploaded []string
	if req.ImageData != "" {
		obj, err := s.put(ctx, req.ImageName, "image", req.ImageData)
		if err != nil {
			return nil, err
		}
		c.ImageURL, c.ImageKey = &obj.URL, &obj.Key
		uploaded = append(uploaded, obj.Key)
	}
	if req.ResourceData != "" {
		obj, err := s.put(ctx, req.ResourceName, "resource", req.ResourceData)
		if err != nil {
			s.discard(ctx, uploaded)
			return nil, err
		}
		c.ResourceURL, c.ResourceKey = &obj.URL, &obj.Key
		uploaded = append(uploaded, obj.Key)
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	return created, nil
}

// Update replaces a course; author only. The record is written first and
// replaced or removed attachments are released after. A failed write
// discards the new uploads; a failed first release restores the record.
func (s *Service) Update(ctx context.Context, id, userID int64, req *CourseRequest) (*Course, error) {
	cur, err := s.authored(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	next := *cur
	applyFields(&next, req)

	var uploaded, stale []string
	if req.ImageData != "" {
		obj, err := s.put(ctx, req.ImageName, "image", req.ImageData)
		if err != nil {
			return nil, err
		}
		next.ImageURL, next.ImageKey = &obj.URL, &obj.Key
		uploaded = append(uploaded, obj.Key)
		stale = appendKey(stale, cur.ImageKey)
	} else if req.RemoveImage {
		next.ImageURL, next.ImageKey = nil, nil
		stale = appendKey(stale, cur.ImageKey)
	}

	if req.ResourceData != "" {
		obj, err := s.put(ctx, req.ResourceName, "resource", req.ResourceData)
		if err != nil {
			s.discard(ctx, uploaded)
			return nil, err
		}
		next.ResourceURL, next.ResourceKey = &obj.URL, &obj.Key
		uploaded = append(uploaded, obj.Key)
		stale = appendKey(stale, cur.ResourceKey)
	} else if req.RemoveResource {
		next.ResourceURL, next.ResourceKey = nil, nil
		stale = appendKey(stale, cur.ResourceKey)
	}

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	if updated == nil {
		s.discard(ctx, uploaded)
		return nil, ErrCourseNotFound
	}

	for i, key := range stale {
		if err := s.store.Delete(ctx, key); err != nil {
			if i > 0 {
				// earlier keys are gone, so the new record stays
				return nil, err
			}
			if _, rerr := s.repo.Update(ctx, cur); rerr != nil {
				return nil, fmt.Errorf("%w (restoring course: %v)", err, rerr)
			}
			s.discard(ctx, uploaded)
			return nil, err
		}
	}
	return updated, nil
}

// Delete releases the attachments, then removes the course; author only
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	c, err := s.authored(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.release(ctx, attachmentKeys(c)); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// PurgeAuthor releases the attachments of every course the user wrote.
// The records go with the account.
func (s *Service) PurgeAuthor(ctx context.Context, userID int64) error {
	courses, err := s.repo.List(ctx, Filter{AuthorID: userID})
	if err != nil {
		return err
	}
	for _, c := range courses {
		if err := s.release(ctx, attachmentKeys(c)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) authored(ctx context.Context, id, userID int64) (*Course, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != userID {
		return nil, ErrNotAuthor
	}
	return c, nil
}

func (s *Service) put(ctx context.Context, name, fallback, payload string) (*blob.Object, error) {
	if int64(len(payload)) > s.maxBytes/3*4+1024 {
		return nil, ErrPayloadTooLarge
	}

	data, contentType, err := blob.DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrPayloadTooLarge
	}

	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = fallback
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			name += exts[0]
		}
	}
	return s.store.Put(ctx, name, contentType, data)
}

func (s *Service) release(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// discard drops objects stored by a call that then failed
func (s *Service) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		_ = s.store.Delete(ctx, key)
	}
}

func applyFields(c *Course, req *CourseRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Description = strings.TrimSpace(req.Description)
	c.Categories = labels(req.Categories)
	c.Tags = labels(req.Tags)
	c.Link = req.Link
}

// labels trims and de-duplicates free-text labels, keeping first-seen order
func labels(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func appendKey(keys []string, key *string) []string {
	if key == nil || *key == "" {
		return keys
	}
	return append(keys, *key)
}

func attachmentKeys(c *Course) []string {
	return appendKey(appendKey(nil, c.ImageKey), c.ResourceKey)
}
