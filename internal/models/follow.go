package models

import "time"

// Follow is a directed follow edge. A row (follower, followee) means
// followee.followers contains follower and follower.following contains
// followee, so both sets stay symmetric by construction.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
