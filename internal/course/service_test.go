package course

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhive/studyhive/internal/blob"
	"github.com/studyhive/studyhive/pkg/apperror"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

var pngURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake image"))

func newTestService() (*Service, *memRepository, *memStore) {
	repo, store := newMemRepository(), newMemStore()
	return NewService(repo, store, 1024), repo, store
}

func TestCreateStoresAttachments(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService()

	c, err := svc.Create(ctx, alice, &CourseRequest{
		Name:         " Graph Theory ",
		Categories:   []string{"math", " math", ""},
		Tags:         []string{"graphs"},
		ImageData:    pngURI,
		ResourceName: "notes.pdf",
		ResourceData: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 notes")),
	})
	require.NoError(t, err)
	assert.Equal(t, "Graph Theory", c.Name)
	assert.Equal(t, []string{"math"}, c.Categories)
	require.NotNil(t, c.ImageKey)
	require.NotNil(t, c.ResourceKey)
	assert.True(t, strings.HasSuffix(*c.ImageKey, "image.png"))
	assert.True(t, strings.HasSuffix(*c.ResourceKey, "notes.pdf"))
	assert.Equal(t, 2, store.count())

	_, err = svc.Create(ctx, alice, &CourseRequest{Name: "Broken", ImageData: pngURI, ResourceData: "!!"})
	assert.ErrorIs(t, err, blob.ErrInvalidPayload)
	assert.Equal(t, 2, store.count(), "image stored before the failure is discarded")

	_, err = svc.Create(ctx, alice, &CourseRequest{
		Name:      "Huge",
		ImageData: base64.StdEncoding.EncodeToString(make([]byte, 1025)),
	})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestCatalogIsReadableByEveryone(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Create(ctx, alice, &CourseRequest{Name: "Algorithms", Categories: []string{"cs"}, Tags: []string{"graphs"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, &CourseRequest{Name: "Calculus", Categories: []string{"math"}})
	require.NoError(t, err)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(ctx, Filter{AuthorID: bob})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Calculus", mine[0].Name)

	cs, err := svc.List(ctx, Filter{Category: " cs "})
	require.NoError(t, err)
	require.Len(t, cs, 1)
	tagged, err := svc.List(ctx, Filter{Tag: "graphs"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)

	got, err := svc.Get(ctx, cs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", got.Name)
	_, err = svc.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestUpdateReplacesAttachments(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService()

	c, err := svc.Create(ctx, alice, &CourseRequest{Name: "Algorithms", ImageData: pngURI, ResourceName: "a.pdf", ResourceData: "JVBERi0="})
	require.NoError(t, err)
	oldImage, oldResource := *c.ImageKey, *c.ResourceKey

	_, err = svc.Update(ctx, c.ID, bob, &CourseRequest{Name: "Mine now"})
	assert.ErrorIs(t, err, ErrNotAuthor)

	updated, err := svc.Update(ctx, c.ID, alice, &CourseRequest{Name: "Algorithms II", ImageData: pngURI, RemoveResource: true})
	require.NoError(t, err)
	assert.Equal(t, "Algorithms II", updated.Name)
	require.NotNil(t, updated.ImageKey)
	assert.NotEqual(t, oldImage, *updated.ImageKey)
	assert.Nil(t, updated.ResourceKey)
	assert.False(t, store.has(oldImage))
	assert.False(t, store.has(oldResource))
	assert.True(t, store.has(*updated.ImageKey))

	kept, err := svc.Update(ctx, c.ID, alice, &CourseRequest{Name: "Algorithms III"})
	require.NoError(t, err)
	assert.Equal(t, *updated.ImageKey, *kept.ImageKey)
}

func TestFailedReleaseFailsTheOperation(t *testing.T) {
	ctx := context.Background()
	svc, repo, store := newTestService()

	c, err := svc.Create(ctx, alice, &CourseRequest{Name: "Algorithms", ImageData: pngURI})
	require.NoError(t, err)
	store.failDelete = true

	_, err = svc.Update(ctx, c.ID, alice, &CourseRequest{Name: "Renamed", RemoveImage: true})
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
	cur, _ := repo.GetByID(ctx, c.ID)
	assert.Equal(t, "Algorithms", cur.Name)
	require.NotNil(t, cur.ImageKey)

	err = svc.Delete(ctx, c.ID, alice)
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
	cur, _ = repo.GetByID(ctx, c.ID)
	assert.NotNil(t, cur)

	store.failDelete = false
	assert.ErrorIs(t, svc.Delete(ctx, c.ID, bob), ErrNotAuthor)
	require.NoError(t, svc.Delete(ctx, c.ID, alice))
	assert.False(t, store.has(*c.ImageKey))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestPurgeAuthor(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService()

	a, err := svc.Create(ctx, alice, &CourseRequest{Name: "A", ImageData: pngURI})
	require.NoError(t, err)
	b, err := svc.Create(ctx, bob, &CourseRequest{Name: "B", ImageData: pngURI})
	require.NoError(t, err)

	require.NoError(t, svc.PurgeAuthor(ctx, alice))
	assert.False(t, store.has(*a.ImageKey))
	assert.True(t, store.has(*b.ImageKey))
}

// failingUpdates is a repository whose writes fail after reads succeed
type failingUpdates struct {
	*memRepository
}

func (failingUpdates) Update(ctx context.Context, c *Course) (*Course, error) {
	return nil, errors.New("db down")
}

func TestFailedWriteKeepsOldAttachments(t *testing.T) {
	ctx := context.Background()
	repo, store := newMemRepository(), newMemStore()
	svc := NewService(repo, store, 1024)

	c, err := svc.Create(ctx, alice, &CourseRequest{Name: "Algorithms", ImageData: pngURI})
	require.NoError(t, err)

	svc.repo = failingUpdates{repo}
	_, err = svc.Update(ctx, c.ID, alice, &CourseRequest{Name: "Renamed", ImageName: "new.png", ImageData: pngURI})
	require.EqualError(t, err, "db down")

	cur, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, *c.ImageKey, *cur.ImageKey)
	assert.True(t, store.has(*c.ImageKey))
	assert.Equal(t, 1, store.count(), "new upload must be discarded")
}
