package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository persists follow edges. A user's followers and following
// sets are both read from the same edge table.
type FollowRepository interface {
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	Add(ctx context.Context, followerID, followeeID uint) error
	Remove(ctx context.Context, followerID, followeeID uint) error
	DeleteForUser(ctx context.Context, userID uint) error
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a FollowRepository backed by db.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return r.pluck(ctx, "follower_id", "followee_id = ?", userID)
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return r.pluck(ctx, "followee_id", "follower_id = ?", userID)
}

func (r *followRepository) pluck(ctx context.Context, column, where string, userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where(where, userID).
		Order("created_at ASC, id ASC").
		Pluck(column, &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// Add inserts the edge; an existing edge is left untouched.
func (r *followRepository) Add(ctx context.Context, followerID, followeeID uint) error {
	edge := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	return translate(err, "Follow")
}

func (r *followRepository) Remove(ctx context.Context, followerID, followeeID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
	return translate(err, "Follow")
}

func (r *followRepository) DeleteForUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? OR followee_id = ?", userID, userID).
		Delete(&models.Follow{}).Error
	return translate(err, "Follow")
}
