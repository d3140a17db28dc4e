package engine

import (
	"context"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"
)

// defaultRecentLimit caps how many notifications a single page returns.
const defaultRecentLimit = 50

// Notify appends one notification row. Self-notifications are never
// generated: an actor acting on their own content produces no entry.
func (e *Engine) Notify(ctx context.Context, recipientID, actorID uint, kind models.NotificationKind, referenceID uint) error {
	if recipientID == actorID {
		return nil
	}

	n := models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Kind:        kind,
		ReferenceID: referenceID,
		CreatedAt:   time.Now(),
	}
	if err := e.db.WithContext(ctx).Create(&n).Error; err != nil {
		return storageErr(err)
	}

	if e.publisher != nil {
		e.publisher.PublishNotification(n)
	}
	return nil
}

// UnreadCount returns how many unread notifications a recipient has.
func (e *Engine) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var n int64
	err := e.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&n).Error
	if err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}

// ListRecent returns a recipient's newest notifications, newest first.
// A non-positive or oversized limit falls back to the default of 50.
func (e *Engine) ListRecent(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > defaultRecentLimit {
		limit = defaultRecentLimit
	}

	notifications := []models.Notification{}
	err := e.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return notifications, nil
}

// MarkAllRead flips every unread notification for the recipient in one
// statement. Idempotent: a second call affects nothing.
func (e *Engine) MarkAllRead(ctx context.Context, recipientID uint) error {
	err := e.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
	if err != nil {
		return storageErr(err)
	}
	return nil
}
