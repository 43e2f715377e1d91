package models

import (
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey"               json:"id"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Name         string    `gorm:"not null"                 json:"name"`
	Picture      string    `json:"picture"`
	Chats        []string  `gorm:"serializer:json"          json:"chats"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken holds at most one row per user: a new login overwrites
// the previous row instead of appending.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"            json:"id"`
	UserID    string    `gorm:"uniqueIndex;not null"  json:"user_id"`
	Token     string    `gorm:"not null"              json:"token"`
	ExpiresAt time.Time `gorm:"not null"              json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
