// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"agora/internal/models"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection. Inside
// Transaction every repository handed to fn is bound to the same
// transaction, so multi-row writes commit or roll back together.
type Store interface {
	Users() UserRepository
	Follows() FollowRepository
	Posts() PostRepository
	Comments() CommentRepository
	Messages() MessageRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository       { return NewUserRepository(s.db) }
func (s *gormStore) Follows() FollowRepository   { return NewFollowRepository(s.db) }
func (s *gormStore) Posts() PostRepository       { return NewPostRepository(s.db) }
func (s *gormStore) Comments() CommentRepository { return NewCommentRepository(s.db) }
func (s *gormStore) Messages() MessageRepository { return NewMessageRepository(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate maps a GORM error onto the application error taxonomy.
// resource names the entity in NotFound messages, e.g. "Post".
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueConstraintError(err):
		return models.NewConflictError(resource + " already exists")
	default:
		return models.NewInternalError(err)
	}
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
