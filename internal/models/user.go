package models

import "time"

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"size:255;not null"`
	CreatedAt      time.Time `json:"created_at"`
}
