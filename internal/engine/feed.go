package engine

import (
	"context"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"gorm.io/gorm"
)

// DefaultFeedLimit is the page size used when the caller passes none.
const DefaultFeedLimit = 20

type Profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// EnrichedPost is a post plus its owner's public profile and live counters.
// The engine never returns a bare post row to read-side callers.
type EnrichedPost struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	Author          Profile   `json:"author"`
	LikeCount       int64     `json:"like_count"`
	ViewCount       int64     `json:"view_count"`
	CommentCount    int64     `json:"comment_count"`
	IsLikedByViewer bool      `json:"is_liked_by_viewer"`
}

// enrichedSelect computes the counters as live subselects over the base
// tables; a viewer id of 0 means anonymous and never matches a like row.
const enrichedSelect = `posts.id, posts.title, posts.content, posts.created_at, posts.user_id, users.username,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = posts.id) AS like_count,
	(SELECT COUNT(*) FROM post_views pv WHERE pv.post_id = posts.id) AS view_count,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id) AS comment_count,
	EXISTS(SELECT 1 FROM post_likes pl2 WHERE pl2.post_id = posts.id AND pl2.user_id = ?) AS is_liked_by_viewer`

type enrichedRow struct {
	ID              uint
	Title           string
	Content         string
	CreatedAt       time.Time
	UserID          uint
	Username        string
	LikeCount       int64
	ViewCount       int64
	CommentCount    int64
	IsLikedByViewer bool
}

func (r enrichedRow) enriched() EnrichedPost {
	return EnrichedPost{
		ID:              r.ID,
		Title:           r.Title,
		Content:         r.Content,
		CreatedAt:       r.CreatedAt,
		Author:          Profile{ID: r.UserID, Username: r.Username},
		LikeCount:       r.LikeCount,
		ViewCount:       r.ViewCount,
		CommentCount:    r.CommentCount,
		IsLikedByViewer: r.IsLikedByViewer,
	}
}

func scanEnriched(q *gorm.DB) ([]EnrichedPost, error) {
	var raw []enrichedRow
	if err := q.Scan(&raw).Error; err != nil {
		return nil, storageErr(err)
	}
	posts := make([]EnrichedPost, len(raw))
	for i, r := range raw {
		posts[i] = r.enriched()
	}
	return posts, nil
}

// GetFeed returns the viewer's reverse-chronological feed: posts authored
// by the users the viewer follows. A viewer following nobody gets an empty
// feed, never the global one.
func (e *Engine) GetFeed(ctx context.Context, viewerID uint, limit, offset int) ([]EnrichedPost, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if offset < 0 {
		offset = 0
	}

	// only the default first page is cacheable; deeper pages always hit
	// storage
	firstPage := limit == DefaultFeedLimit && offset == 0
	if firstPage && e.cache != nil {
		var cached []EnrichedPost
		if err := e.cache.GetFeed(viewerID, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	db := e.db.WithContext(ctx)

	var followees []uint
	if err := db.Model(&models.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("followed_id", &followees).Error; err != nil {
		return nil, storageErr(err)
	}
	if len(followees) == 0 {
		return []EnrichedPost{}, nil
	}

	posts, err := scanEnriched(db.Model(&models.Post{}).
		Select(enrichedSelect, viewerID).
		Joins("JOIN users ON users.id = posts.user_id").
		Where("posts.user_id IN ?", followees).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset))
	if err != nil {
		return nil, err
	}

	if firstPage && e.cache != nil && len(posts) > 0 {
		e.cache.SetFeed(viewerID, posts)
	}
	return posts, nil
}
