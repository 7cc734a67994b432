package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	IDsByUser(ctx context.Context, userID uint) ([]uint, error)
	DeleteByIDs(ctx context.Context, ids []uint) error
	AddLike(ctx context.Context, like *models.PostLike) error
	RemoveLike(ctx context.Context, postID, userID uint) error
	DeleteLikesByPosts(ctx context.Context, postIDs []uint) error
	DeleteLikesByUser(ctx context.Context, userID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error, "Post")
}

// withDetails preloads the author and the ordered like set and counts
// comments in the same statement.
func (r *postRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count").
		Preload("User").
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_likes.created_at ASC, post_likes.id ASC")
		})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetails(ctx).Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err, "Post")
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return r.page(r.withDetails(ctx), limit, offset)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return r.page(r.withDetails(ctx).Where("posts.user_id = ?", userID), limit, offset)
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	return r.page(r.withDetails(ctx).Where("posts.user_id IN ?", authorIDs), limit, offset)
}

func (r *postRepository) page(db *gorm.DB, limit, offset int) ([]*models.Post, error) {
	limit, offset = normalizePage(limit, offset)
	posts := make([]*models.Post, 0)
	err := db.Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("title", "content", "image_url", "updated_at").
		Updates(post).Error
	return translate(err, "Post")
}

func (r *postRepository) IDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *postRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Post{}).Error, "Post")
}

// AddLike inserts the like; a concurrent duplicate is a no-op.
func (r *postRepository) AddLike(ctx context.Context, like *models.PostLike) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like).Error
	return translate(err, "Like")
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
	return translate(err, "Like")
}

func (r *postRepository) DeleteLikesByPosts(ctx context.Context, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.PostLike{}).Error, "Like")
}

func (r *postRepository) DeleteLikesByUser(ctx context.Context, userID uint) error {
	return translate(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PostLike{}).Error, "Like")
}
