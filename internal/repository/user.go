package repository

import (
	"context"
	"errors"
	"strings"

	"agora/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query string, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

// GetByUsername returns (nil, nil) when the name is free.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("username ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Model(user).
		Select("username", "email", "password", "bio", "avatar", "updated_at").
		Updates(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	limit, offset = normalizePage(limit, offset)
	users := make([]models.User, 0)
	db := r.db.WithContext(ctx).Order("username ASC").Limit(limit).Offset(offset)
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(username) LIKE ? OR LOWER(bio) LIKE ?", like, like)
	}
	if err := db.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
