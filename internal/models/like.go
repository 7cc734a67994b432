package models

import "time"

// PostLike is one entry of a post's like set.
// The combination of UserID and PostID must be unique.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post" json:"user"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike is one entry of a comment's like set.
// The combination of UserID and CommentID must be unique.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment" json:"user"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
