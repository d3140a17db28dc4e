package engine_test

import (
	"context"
	"testing"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/engine"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Structural validation happens before any storage work, so these cases
// need no database at all.
func TestToggleEdge_SelfFollowRejected(t *testing.T) {
	e := engine.New(nil, nil, nil)

	_, err := e.ToggleEdge(context.Background(), engine.EdgeFollow, 7, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestToggleEdge_BookmarkRequiresCollection(t *testing.T) {
	e := engine.New(nil, nil, nil)

	_, err := e.ToggleEdge(context.Background(), engine.EdgeBookmark, 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestToggleEdge_ZeroIDsRejected(t *testing.T) {
	e := engine.New(nil, nil, nil)

	_, err := e.ToggleEdge(context.Background(), engine.EdgeLike, 0, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrValidation)
}

func TestToggleFollow_Scenario(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	a := createTestUser(t, e)
	b := createTestUser(t, e)

	// A follows B
	result, err := e.ToggleEdge(ctx, engine.EdgeFollow, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.EdgePresent, result.State)
	assert.Equal(t, int64(1), result.Counts[engine.CountUserFollowers])
	assert.Equal(t, int64(1), result.Counts[engine.CountUserFollowing])

	notifications, err := e.ListRecent(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationNewFollower, notifications[0].Kind)
	assert.Equal(t, a.ID, notifications[0].ActorID)

	// same call again unfollows and does not notify
	result, err = e.ToggleEdge(ctx, engine.EdgeFollow, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.EdgeAbsent, result.State)
	assert.Equal(t, int64(0), result.Counts[engine.CountUserFollowers])

	notifications, err = e.ListRecent(ctx, b.ID, 0)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}

func TestToggleLike_DoubleToggleReturnsToOriginal(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	a := createTestUser(t, e)
	b := createTestUser(t, e)
	post := createTestPost(t, e, b.ID)

	result, err := e.ToggleEdge(ctx, engine.EdgeLike, a.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.EdgePresent, result.State)
	assert.Equal(t, int64(1), result.Counts[engine.CountPostLikes])

	result, err = e.ToggleEdge(ctx, engine.EdgeLike, a.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.EdgeAbsent, result.State)
	assert.Equal(t, int64(0), result.Counts[engine.CountPostLikes])
}

func TestToggleLike_NotifiesAuthorExactlyOnce(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	a := createTestUser(t, e)
	b := createTestUser(t, e)
	post := createTestPost(t, e, b.ID)

	_, err := e.ToggleEdge(ctx, engine.EdgeLike, a.ID, post.ID)
	require.NoError(t, err)

	notifications, err := e.ListRecent(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationPostLiked, notifications[0].Kind)
	assert.Equal(t, b.ID, notifications[0].RecipientID)
	assert.Equal(t, a.ID, notifications[0].ActorID)
}

func TestToggleLike_SelfLikeIsSilent(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	b := createTestUser(t, e)
	post := createTestPost(t, e, b.ID)

	// liking your own post is permitted but never notifies
	result, err := e.ToggleEdge(ctx, engine.EdgeLike, b.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.EdgePresent, result.State)

	unread, err := e.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestToggleLike_MissingPost(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	a := createTestUser(t, e)

	_, err := e.ToggleEdge(ctx, engine.EdgeLike, a.ID, 999999999)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}
