package models

import "time"

type NotificationKind string

const (
	NotificationNewFollower NotificationKind = "new_follower"
	NotificationPostLiked   NotificationKind = "post_liked"
	NotificationNewComment  NotificationKind = "new_comment"
)

// Notification is an append-only per-recipient log entry. Rows are created
// only by the engine's fan-out and mutated only by the bulk mark-read.
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"not null;index"`
	ActorID     uint             `json:"actor_id" gorm:"not null"`
	Kind        NotificationKind `json:"kind" gorm:"size:30;not null"`
	ReferenceID uint             `json:"reference_id" gorm:"not null"`
	Read        bool             `json:"read" gorm:"not null;default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`

	Recipient User `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Actor     User `json:"-" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
}
