package engine_test

import (
	"context"
	"testing"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleBookmark_ForeignCollectionRejected(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	owner := createTestUser(t, e)
	intruder := createTestUser(t, e)
	post := createTestPost(t, e, owner.ID)

	collection, err := e.CreateCollection(ctx, owner.ID, "reading list")
	require.NoError(t, err)

	// bookmarking into someone else's collection never inserts anything
	_, err = e.ToggleBookmark(ctx, intruder.ID, post.ID, collection.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrValidation)

	posts, err := e.ListBookmarks(ctx, owner.ID, collection.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestToggleBookmark_RoundTrip(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	owner := createTestUser(t, e)
	author := createTestUser(t, e)
	post := createTestPost(t, e, author.ID)

	collection, err := e.CreateCollection(ctx, owner.ID, "favorites")
	require.NoError(t, err)

	result, err := e.ToggleBookmark(ctx, owner.ID, post.ID, collection.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.EdgePresent, result.State)

	posts, err := e.ListBookmarks(ctx, owner.ID, collection.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	// bookmarks never notify
	unread, err := e.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	result, err = e.ToggleBookmark(ctx, owner.ID, post.ID, collection.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.EdgeAbsent, result.State)
}

func TestCreateCollection_DuplicateNamePerOwner(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	owner := createTestUser(t, e)

	_, err := e.CreateCollection(ctx, owner.ID, "dupes")
	require.NoError(t, err)

	_, err = e.CreateCollection(ctx, owner.ID, "dupes")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrConflict)
}
