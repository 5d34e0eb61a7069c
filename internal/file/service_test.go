package file

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
	carol int64 = 3

	studyGroup int64 = 10
	otherGroup int64 = 11
)

func newTestService(maxBytes int64) (*Service, *memRepository, *memStore) {
	repo := newMemRepository()
	store := newMemStore()
	members := memberSet{studyGroup: {alice, bob}, otherGroup: {alice}}
	return NewService(repo, members, store, maxBytes), repo, store
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(16)

	tests := []struct {
		name    string
		userID  int64
		req     UploadRequest
		wantErr error
	}{
		{name: "non member", userID: carol, req: UploadRequest{GroupID: studyGroup, FileName: "a.txt", FileData: encode("hi")}, wantErr: errNotMember},
		{name: "bad payload", userID: alice, req: UploadRequest{GroupID: studyGroup, FileName: "a.txt", FileData: "!!"}, wantErr: blob.ErrInvalidPayload},
		{name: "too large", userID: alice, req: UploadRequest{GroupID: studyGroup, FileName: "a.txt", FileData: encode(strings.Repeat("x", 17))}, wantErr: ErrFileTooLarge},
		{name: "way too large", userID: alice, req: UploadRequest{GroupID: studyGroup, FileName: "a.txt", FileData: strings.Repeat("A", 4096)}, wantErr: ErrFileTooLarge},
		{name: "bad name", userID: alice, req: UploadRequest{GroupID: studyGroup, FileName: "  ", FileData: encode("hi")}, wantErr: ErrInvalidName},
		{name: "at the limit", userID: alice, req: UploadRequest{GroupID: studyGroup, FileName: "../../notes.txt", FileData: encode(strings.Repeat("x", 16))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := svc.Upload(ctx, tt.userID, &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "notes.txt", f.Name)
			assert.True(t, store.has(f.StorageKey))
			assert.Equal(t, "https://files.example.com/"+f.StorageKey, f.URL)
		})
	}
}

func TestListForMembersOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(1024)

	_, err := svc.Upload(ctx, bob, &UploadRequest{GroupID: studyGroup, FileName: "a.txt", FileData: encode("a")})
	require.NoError(t, err)
	_, err = svc.Upload(ctx, alice, &UploadRequest{GroupID: otherGroup, FileName: "b.txt", FileData: encode("b")})
	require.NoError(t, err)

	files, err := svc.List(ctx, studyGroup, alice)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Name)

	_, err = svc.List(ctx, studyGroup, carol)
	assert.ErrorIs(t, err, errNotMember)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo, store := newTestService(1024)
	f, err := svc.Upload(ctx, bob, &UploadRequest{GroupID: studyGroup, FileName: "a.txt", FileData: encode("a")})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, f.ID, alice), ErrNotUploader)
	assert.ErrorIs(t, svc.Delete(ctx, 999, bob), ErrFileNotFound)

	// a failed release fails the whole deletion and keeps the record
	store.failDelete = true
	err = svc.Delete(ctx, f.ID, bob)
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
	kept, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	store.failDelete = false
	require.NoError(t, svc.Delete(ctx, f.ID, bob))
	assert.False(t, store.has(f.StorageKey))
	gone, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(1024)
	a, err := svc.Upload(ctx, bob, &UploadRequest{GroupID: studyGroup, FileName: "a.txt", FileData: encode("a")})
	require.NoError(t, err)
	b, err := svc.Upload(ctx, alice, &UploadRequest{GroupID: studyGroup, FileName: "b.txt", FileData: encode("b")})
	require.NoError(t, err)
	c, err := svc.Upload(ctx, alice, &UploadRequest{GroupID: otherGroup, FileName: "c.txt", FileData: encode("c")})
	require.NoError(t, err)

	require.NoError(t, svc.PurgeUploader(ctx, bob))
	assert.False(t, store.has(a.StorageKey))
	assert.True(t, store.has(b.StorageKey))

	store.failDelete = true
	assert.Error(t, svc.PurgeGroup(ctx, studyGroup))
	store.failDelete = false

	require.NoError(t, svc.PurgeGroup(ctx, studyGroup))
	assert.False(t, store.has(b.StorageKey))
	assert.True(t, store.has(c.StorageKey))
}

func TestRetryFinishesPartialDeletes(t *testing.T) {
	ctx := context.Background()
	svc, repo, store := newTestService(1024)
	a, err := svc.Upload(ctx, bob, &UploadRequest{GroupID: studyGroup, FileName: "a.txt", FileData: encode("a")})
	require.NoError(t, err)
	b, err := svc.Upload(ctx, alice, &UploadRequest{GroupID: studyGroup, FileName: "b.txt", FileData: encode("b")})
	require.NoError(t, err)

	t.Run("record delete fails after release", func(t *testing.T) {
		repo.deleteErr = errors.New("db down")
		err := svc.Delete(ctx, a.ID, bob)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
		assert.False(t, store.has(a.StorageKey))

		repo.deleteErr = nil
		require.NoError(t, svc.Delete(ctx, a.ID, bob))
		gone, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("group purge stops part way", func(t *testing.T) {
		c, err := svc.Upload(ctx, bob, &UploadRequest{GroupID: studyGroup, FileName: "c.txt", FileData: encode("c")})
		require.NoError(t, err)

		// listed newest first, so c is released before b fails
		store.failKey = b.StorageKey
		assert.Error(t, svc.PurgeGroup(ctx, studyGroup))
		assert.False(t, store.has(c.StorageKey))
		assert.True(t, store.has(b.StorageKey))

		store.failKey = ""
		require.NoError(t, svc.PurgeGroup(ctx, studyGroup))
		assert.False(t, store.has(b.StorageKey))
	})
}
