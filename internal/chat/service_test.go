package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhive/studyhive/internal/relay"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3

	studyGroup int64 = 10
)

func newTestService() (*Service, *memRepository, *recorder) {
	repo := newMemRepository()
	events := &recorder{}
	members := memberSet{studyGroup: {alice, bob}}
	return NewService(repo, members, events), repo, events
}

func TestPost(t *testing.T) {
	ctx := context.Background()
	svc, _, events := newTestService()

	tests := []struct {
		name    string
		author  int64
		content string
		wantErr error
	}{
		{name: "empty", author: alice, content: "   ", wantErr: ErrContentRequired},
		{name: "too long", author: alice, content: strings.Repeat("é", MaxContentLength+1), wantErr: ErrContentTooLong},
		{name: "not a member", author: carol, content: "hi", wantErr: errNotMember},
		{name: "at the limit", author: alice, content: strings.Repeat("é", MaxContentLength)},
		{name: "trimmed", author: bob, content: "  hello  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := events.count()
			msg, err := svc.Post(ctx, studyGroup, tt.author, tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, events.count())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.content), msg.Content)
			assert.Empty(t, msg.Reactions)

			ev := events.last()
			assert.Equal(t, relay.EventMessageCreated, ev.Type)
			assert.Equal(t, studyGroup, ev.GroupID)
			assert.Equal(t, msg.ID, ev.Data.(*MessageResponse).ID)
		})
	}
}

func TestListIsOldestFirstForMembersOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	for _, content := range []string{"one", "two", "three"} {
		_, err := svc.Post(ctx, studyGroup, alice, content)
		require.NoError(t, err)
	}

	messages, err := svc.List(ctx, studyGroup, bob)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "three", messages[2].Content)

	_, err = svc.List(ctx, studyGroup, carol)
	assert.ErrorIs(t, err, errNotMember)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo, events := newTestService()
	msg, err := svc.Post(ctx, studyGroup, alice, "hello")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, msg.ID, bob), ErrNotAuthor)
	assert.ErrorIs(t, svc.Delete(ctx, 999, alice), ErrMessageNotFound)

	require.NoError(t, svc.Delete(ctx, msg.ID, alice))
	stored, err := repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	ev := events.last()
	assert.Equal(t, relay.EventMessageDeleted, ev.Type)
	assert.Equal(t, &DeletedPayload{MessageID: msg.ID, GroupID: studyGroup}, ev.Data)
}

func TestReactReplacesPreviousReaction(t *testing.T) {
	ctx := context.Background()
	svc, _, events := newTestService()
	msg, err := svc.Post(ctx, studyGroup, alice, "hello")
	require.NoError(t, err)

	_, err = svc.React(ctx, msg.ID, bob, "like")
	require.NoError(t, err)
	reactions, err := svc.React(ctx, msg.ID, bob, "love")
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, "love", reactions[0].Reaction)

	reactions, err = svc.React(ctx, msg.ID, alice, "like")
	require.NoError(t, err)
	assert.Len(t, reactions, 2)

	payload := events.last().Data.(*ReactionPayload)
	assert.Equal(t, alice, payload.UserID)
	assert.Equal(t, "like", payload.Reaction)
	assert.Len(t, payload.Reactions, 2)

	_, err = svc.React(ctx, msg.ID, carol, "like")
	assert.ErrorIs(t, err, errNotMember)
	_, err = svc.React(ctx, msg.ID, bob, " ")
	assert.ErrorIs(t, err, ErrReactionRequired)
	_, err = svc.React(ctx, 999, bob, "like")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestRemoveReaction(t *testing.T) {
	ctx := context.Background()
	svc, _, events := newTestService()
	msg, err := svc.Post(ctx, studyGroup, alice, "hello")
	require.NoError(t, err)
	_, err = svc.React(ctx, msg.ID, bob, "like")
	require.NoError(t, err)

	reactions, err := svc.RemoveReaction(ctx, msg.ID, bob)
	require.NoError(t, err)
	assert.Empty(t, reactions)

	payload := events.last().Data.(*ReactionPayload)
	assert.Equal(t, "", payload.Reaction)
	assert.Empty(t, payload.Reactions)
}
