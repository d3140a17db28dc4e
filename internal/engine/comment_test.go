package engine_test

import (
	"context"
	"testing"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/engine"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_NotifiesPostAuthor(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	author := createTestUser(t, e)
	commenter := createTestUser(t, e)
	post := createTestPost(t, e, author.ID)

	comment, err := e.CreateComment(ctx, commenter.ID, post.ID, nil, "nice post")
	require.NoError(t, err)

	notifications, err := e.ListRecent(ctx, author.ID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationNewComment, notifications[0].Kind)
	assert.Equal(t, comment.ID, notifications[0].ReferenceID)
}

func TestCreateComment_OwnPostIsSilent(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	author := createTestUser(t, e)
	post := createTestPost(t, e, author.ID)

	_, err := e.CreateComment(ctx, author.ID, post.ID, nil, "replying to myself")
	require.NoError(t, err)

	unread, err := e.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestCreateComment_ThreadedReply(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	author := createTestUser(t, e)
	post := createTestPost(t, e, author.ID)

	parent, err := e.CreateComment(ctx, author.ID, post.ID, nil, "top level")
	require.NoError(t, err)

	reply, err := e.CreateComment(ctx, author.ID, post.ID, &parent.ID, "threaded reply")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)

	entries, err := e.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, parent.ID, entries[0].ID)
	assert.Equal(t, author.Username, entries[0].Username)
}

func TestCreateComment_ParentFromOtherPostRejected(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	author := createTestUser(t, e)
	postA := createTestPost(t, e, author.ID)
	postB := createTestPost(t, e, author.ID)

	parent, err := e.CreateComment(ctx, author.ID, postA.ID, nil, "on post A")
	require.NoError(t, err)

	_, err = e.CreateComment(ctx, author.ID, postB.ID, &parent.ID, "wrong thread")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestCreateComment_BlankContentRejected(t *testing.T) {
	e := engine.New(nil, nil, nil)

	_, err := e.CreateComment(context.Background(), 1, 1, nil, "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrValidation)
}
