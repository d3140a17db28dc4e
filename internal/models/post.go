package models

import "time"

type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User       User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:post_categories;"`
}

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	ParentID  *uint     `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	User   User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post   Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Parent *Comment `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;uniqueIndex;not null"`
}

// PostView is an append-only view event. UserID is nil for anonymous views.
// Views are only ever surfaced in aggregate, never individually.
type PostView struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	PostID   uint      `json:"post_id" gorm:"not null;index"`
	UserID   *uint     `json:"user_id,omitempty" gorm:"index"`
	ViewedAt time.Time `json:"viewed_at"`

	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}
