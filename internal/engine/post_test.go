package engine_test

import (
	"context"
	"testing"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_BlankTitleRejected(t *testing.T) {
	e := engine.New(nil, nil, nil)

	_, err := e.CreatePost(context.Background(), 1, "  ", "content", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestGetPost_RecordsViewAndViewerState(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	author := createTestUser(t, e)
	viewer := createTestUser(t, e)
	post := createTestPost(t, e, author.ID)

	_, err := e.ToggleEdge(ctx, engine.EdgeLike, viewer.ID, post.ID)
	require.NoError(t, err)

	got, err := e.GetPost(ctx, post.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, author.Username, got.Author.Username)
	assert.True(t, got.IsLikedByViewer)
	assert.Equal(t, int64(1), got.ViewCount)

	// an anonymous read counts too
	got, err = e.GetPost(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, got.IsLikedByViewer)
	assert.Equal(t, int64(2), got.ViewCount)
}

func TestGetPost_Missing(t *testing.T) {
	e := testEngine(t)

	_, err := e.GetPost(context.Background(), 999999999, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestDeletePost_OnlyAuthor(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	author := createTestUser(t, e)
	other := createTestUser(t, e)
	post := createTestPost(t, e, author.ID)

	err := e.DeletePost(ctx, post.ID, other.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrValidation)

	require.NoError(t, e.DeletePost(ctx, post.ID, author.ID))

	_, err = e.GetPost(ctx, post.ID, 0)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestDeletePost_RemovesEdges(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	author := createTestUser(t, e)
	liker := createTestUser(t, e)
	post := createTestPost(t, e, author.ID, "cleanup")

	_, err := e.ToggleEdge(ctx, engine.EdgeLike, liker.ID, post.ID)
	require.NoError(t, err)
	_, err = e.CreateComment(ctx, liker.ID, post.ID, nil, "soon gone")
	require.NoError(t, err)

	require.NoError(t, e.DeletePost(ctx, post.ID, author.ID))

	likes, err := e.Count(ctx, engine.CountPostLikes, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), likes)

	comments, err := e.Count(ctx, engine.CountPostComments, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), comments)
}

func TestCreatePost_TagsAttached(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	author := createTestUser(t, e)
	post, err := e.CreatePost(ctx, author.ID, "tagged", "content", []string{"go", "databases", " "})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
}
