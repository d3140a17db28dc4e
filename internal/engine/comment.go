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

// CommentEntry is a comment joined with its author's public profile.
type CommentEntry struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	PostID    uint      `json:"post_id"`
	ParentID  *uint     `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateComment inserts a comment and fans out a notification to the post
// author in the same transaction. parentID threads the comment under an
// existing one, which must belong to the same post.
func (e *Engine) CreateComment(ctx context.Context, authorID, postID uint, parentID *uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	tx := e.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storageErr(tx.Error)
	}

	if err := requireUser(tx, authorID); err != nil {
		tx.Rollback()
		return nil, err
	}

	var post models.Post
	if err := tx.Select("id", "user_id").First(&post, postID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, storageErr(err)
	}

	if parentID != nil {
		var parent models.Comment
		if err := tx.Select("id", "post_id").First(&parent, *parentID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: comment %d", ErrNotFound, *parentID)
			}
			return nil, storageErr(err)
		}
		if parent.PostID != postID {
			tx.Rollback()
			return nil, fmt.Errorf("%w: parent comment belongs to a different post", ErrValidation)
		}
	}

	comment := models.Comment{
		Content:   content,
		UserID:    authorID,
		PostID:    postID,
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(&comment).Error; err != nil {
		tx.Rollback()
		return nil, storageErr(err)
	}

	// commenting on your own post stays silent
	var created *models.Notification
	if post.UserID != authorID {
		n := models.Notification{
			RecipientID: post.UserID,
			ActorID:     authorID,
			Kind:        models.NotificationNewComment,
			ReferenceID: comment.ID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&n).Error; err != nil {
			tx.Rollback()
			return nil, storageErr(err)
		}
		created = &n
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storageErr(err)
	}

	if e.publisher != nil && created != nil {
		e.publisher.PublishNotification(*created)
	}
	return &comment, nil
}

// ListComments returns all comments on a post, oldest first, with author
// profiles attached.
func (e *Engine) ListComments(ctx context.Context, postID uint) ([]CommentEntry, error) {
	db := e.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
		return nil, storageErr(err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	entries := []CommentEntry{}
	err := db.Model(&models.Comment{}).
		Select("comments.id, comments.content, comments.user_id, users.username, comments.post_id, comments.parent_id, comments.created_at").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC, comments.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return entries, nil
}
