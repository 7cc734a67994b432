// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the Agora application.
// Followers and Following are projections of the follows table and are
// filled by the repository when a profile is loaded.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `gorm:"size:500" json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Followers      []uint `gorm:"-" json:"followers"`
	Following      []uint `gorm:"-" json:"following"`
	FollowersCount int    `gorm:"-" json:"followers_count"`
	FollowingCount int    `gorm:"-" json:"following_count"`
}

// UserSummary is the public projection of a user embedded in other payloads.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Summary returns the public projection of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
