package engine

import (
	"context"
	"fmt"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"gorm.io/gorm"
)

type CounterKind string

const (
	CountPostLikes     CounterKind = "post_likes"
	CountPostViews     CounterKind = "post_views"
	CountPostComments  CounterKind = "post_comments"
	CountUserFollowers CounterKind = "user_followers"
	CountUserFollowing CounterKind = "user_following"
	CountUserPosts     CounterKind = "user_posts"
)

// Count aggregates the requested counter live from its base table. There is
// no stored counter column anywhere, so the value can never drift.
func (e *Engine) Count(ctx context.Context, kind CounterKind, subjectID uint) (int64, error) {
	return countOne(e.db.WithContext(ctx), kind, subjectID)
}

// countOne works on any gorm handle, including an open transaction, and
// therefore sees writes made earlier in that transaction.
func countOne(tx *gorm.DB, kind CounterKind, subjectID uint) (int64, error) {
	var q *gorm.DB
	switch kind {
	case CountPostLikes:
		q = tx.Model(&models.PostLike{}).Where("post_id = ?", subjectID)
	case CountPostViews:
		q = tx.Model(&models.PostView{}).Where("post_id = ?", subjectID)
	case CountPostComments:
		q = tx.Model(&models.Comment{}).Where("post_id = ?", subjectID)
	case CountUserFollowers:
		q = tx.Model(&models.Follow{}).Where("followed_id = ?", subjectID)
	case CountUserFollowing:
		q = tx.Model(&models.Follow{}).Where("follower_id = ?", subjectID)
	case CountUserPosts:
		q = tx.Model(&models.Post{}).Where("user_id = ?", subjectID)
	default:
		return 0, fmt.Errorf("%w: unknown counter kind %q", ErrValidation, kind)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}
