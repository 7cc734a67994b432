package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	DeleteByPosts(ctx context.Context, postIDs []uint) error
	DeleteByUser(ctx context.Context, userID uint) error
	AddLike(ctx context.Context, like *models.CommentLike) error
	RemoveLike(ctx context.Context, commentID, userID uint) error
	DeleteLikesByUser(ctx context.Context, userID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a CommentRepository backed by db.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error, "Comment")
}

func (r *commentRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("comment_likes.created_at ASC, comment_likes.id ASC")
		})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.withDetails(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err, "Comment")
	}
	return &comment, nil
}

// ListByPost returns the post's comments oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	err := r.withDetails(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Model(comment).
		Select("content", "updated_at").
		Updates(comment).Error
	return translate(err, "Comment")
}

// Delete removes the comment and its likes.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	res := db.Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment")
	}
	return nil
}

// DeleteByPosts removes every comment on the given posts, and their likes.
func (r *commentRepository) DeleteByPosts(ctx context.Context, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.deleteWhere(ctx, "post_id IN ?", postIDs)
}

// DeleteByUser removes every comment the user wrote, and their likes.
func (r *commentRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.deleteWhere(ctx, "user_id = ?", userID)
}

func (r *commentRepository) deleteWhere(ctx context.Context, query string, arg any) error {
	db := r.db.WithContext(ctx)
	ids := db.Model(&models.Comment{}).Select("id").Where(query, arg)
	if err := db.Where("comment_id IN (?)", ids).Delete(&models.CommentLike{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := db.Where(query, arg).Delete(&models.Comment{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// AddLike inserts the like; a concurrent duplicate is a no-op.
func (r *commentRepository) AddLike(ctx context.Context, like *models.CommentLike) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like).Error
	return translate(err, "Like")
}

func (r *commentRepository) RemoveLike(ctx context.Context, commentID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&models.CommentLike{}).Error
	return translate(err, "Like")
}

func (r *commentRepository) DeleteLikesByUser(ctx context.Context, userID uint) error {
	return translate(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CommentLike{}).Error, "Like")
}
