package models

import (
	"time"
)

// Post represents a post in the Agora application.
type Post struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:300;not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	ImageURL  string     `json:"image_url"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID" json:"user"`
	Likes     []PostLike `gorm:"foreignKey:PostID" json:"likes"`
	Comments  []Comment  `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
}
