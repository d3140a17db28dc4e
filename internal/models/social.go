package models

import "time"

// Follow is a directed follower->followed edge. The composite unique index
// is what serializes concurrent toggles of the same pair.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	FollowedID uint      `json:"followed_id" gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed User `json:"-" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

// PostLike is a user->post edge, at most one per pair.
type PostLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_post"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_user_post"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// Collection is a named grouping of bookmarks owned by one user. Names are
// unique per owner, matching the original schema.
type Collection struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_owner_name"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_owner_name"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Bookmark links (user, post, collection). The collection's owner must be
// the bookmarking user; that check lives in the engine, not here.
type Bookmark struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_post_collection"`
	PostID       uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_user_post_collection"`
	CollectionID uint      `json:"collection_id" gorm:"not null;index;uniqueIndex:idx_user_post_collection"`
	CreatedAt    time.Time `json:"created_at"`

	User       User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post       Post       `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Collection Collection `json:"-" gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`
}
