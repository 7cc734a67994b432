package models

import (
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	UserID    uint          `gorm:"not null;index" json:"user_id"`
	PostID    uint          `gorm:"not null;index" json:"post_id"`
	User      User          `gorm:"foreignKey:UserID" json:"user"`
	Likes     []CommentLike `gorm:"foreignKey:CommentID" json:"likes"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
