package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"gorm.io/gorm"
)

// CreatePost inserts a post and its category links in one transaction.
// Categories are created on first use.
func (e *Engine) CreatePost(ctx context.Context, authorID uint, title, content string, tags []string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	tx := e.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storageErr(tx.Error)
	}

	if err := requireUser(tx, authorID); err != nil {
		tx.Rollback()
		return nil, err
	}

	post := models.Post{
		Title:     title,
		Content:   content,
		UserID:    authorID,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(&post).Error; err != nil {
		tx.Rollback()
		return nil, storageErr(err)
	}

	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var category models.Category
		if err := tx.Where("name = ?", name).
			FirstOrCreate(&category, models.Category{Name: name}).Error; err != nil {
			tx.Rollback()
			return nil, storageErr(err)
		}
		if err := tx.Model(&post).Association("Categories").Append(&category); err != nil {
			tx.Rollback()
			return nil, storageErr(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storageErr(err)
	}

	if e.publisher != nil {
		e.publisher.PublishPostCreated(post)
	}
	return &post, nil
}

// GetPost returns one post enriched with counters and the viewer's own like
// state. Every detail read is recorded as a view; a viewer id of 0 records
// an anonymous view.
func (e *Engine) GetPost(ctx context.Context, postID, viewerID uint) (*EnrichedPost, error) {
	var viewer *uint
	if viewerID != 0 {
		viewer = &viewerID
	}
	if err := e.RecordView(ctx, postID, viewer); err != nil {
		return nil, err
	}

	posts, err := scanEnriched(e.db.WithContext(ctx).Model(&models.Post{}).
		Select(enrichedSelect, viewerID).
		Joins("JOIN users ON users.id = posts.user_id").
		Where("posts.id = ?", postID).
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	return &posts[0], nil
}

// ListPosts returns the global reverse-chronological post list, enriched
// the same way the feed is.
func (e *Engine) ListPosts(ctx context.Context, viewerID uint, limit, offset int) ([]EnrichedPost, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if offset < 0 {
		offset = 0
	}

	return scanEnriched(e.db.WithContext(ctx).Model(&models.Post{}).
		Select(enrichedSelect, viewerID).
		Joins("JOIN users ON users.id = posts.user_id").
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset))
}

// RecordView appends one view event. viewerID is nil for anonymous views.
// View rows are never deleted and only surface through the views counter.
func (e *Engine) RecordView(ctx context.Context, postID uint, viewerID *uint) error {
	view := models.PostView{
		PostID:   postID,
		UserID:   viewerID,
		ViewedAt: time.Now(),
	}
	if err := e.db.WithContext(ctx).Create(&view).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return storageErr(err)
	}
	return nil
}

// DeletePost removes a post and its dependent rows. Only the author may
// delete. The dependent deletes are spelled out here so the full effect set
// is visible in code rather than hidden behind cascade rules.
func (e *Engine) DeletePost(ctx context.Context, postID, callerID uint) error {
	tx := e.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storageErr(tx.Error)
	}

	var post models.Post
	if err := tx.Select("id", "user_id").First(&post, postID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return storageErr(err)
	}
	if post.UserID != callerID {
		tx.Rollback()
		return fmt.Errorf("%w: only the author can delete a post", ErrValidation)
	}

	for _, del := range []*gorm.DB{
		tx.Where("post_id = ?", postID).Delete(&models.PostLike{}),
		tx.Where("post_id = ?", postID).Delete(&models.PostView{}),
		tx.Where("post_id = ?", postID).Delete(&models.Bookmark{}),
		tx.Where("post_id = ?", postID).Delete(&models.Comment{}),
	} {
		if del.Error != nil {
			tx.Rollback()
			return storageErr(del.Error)
		}
	}
	if err := tx.Model(&post).Association("Categories").Clear(); err != nil {
		tx.Rollback()
		return storageErr(err)
	}
	if err := tx.Delete(&post).Error; err != nil {
		tx.Rollback()
		return storageErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		return storageErr(err)
	}
	return nil
}
