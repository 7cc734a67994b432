package service

import (
	"context"
	"strings"
	"time"

	"agora/internal/membership"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// CommentService provides comment business logic.
type CommentService struct {
	store repository.Store
	now   func() time.Time
}

type CreateCommentInput struct {
	UserID  uint   `json:"-"`
	PostID  uint   `json:"-"`
	Content string `json:"content" validate:"required,max=5000"`
}

type UpdateCommentInput struct {
	UserID    uint   `json:"-"`
	CommentID uint   `json:"-"`
	Content   string `json:"content" validate:"required,max=5000"`
}

type DeleteCommentInput struct {
	UserID    uint `json:"-"`
	CommentID uint `json:"-"`
}

// NewCommentService returns a CommentService over store.
func NewCommentService(store repository.Store) *CommentService {
	return &CommentService{store: store, now: time.Now}
}

func commentLikeUser(l models.CommentLike) uint { return l.UserID }

// CreateComment attaches a new comment to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var created *models.Comment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Posts().GetByID(ctx, in.PostID); err != nil {
			return err
		}
		comment := &models.Comment{Content: in.Content, UserID: in.UserID, PostID: in.PostID}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		var err error
		created, err = tx.Comments().GetByID(ctx, comment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListComments returns a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.store.Posts().GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByPost(ctx, postID)
}

// UpdateComment changes the content. Only the author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	comment, err := s.store.Comments().GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	comment.Content = in.Content
	if err := s.store.Comments().Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the comment. The comment author and the author of
// the post it belongs to may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		comment, err := tx.Comments().GetByID(ctx, in.CommentID)
		if err != nil {
			return err
		}
		if comment.UserID != in.UserID {
			post, err := tx.Posts().GetByID(ctx, comment.PostID)
			if err != nil {
				return err
			}
			if post.UserID != in.UserID {
				return models.NewForbiddenError("You can only delete your own comments")
			}
		}
		return tx.Comments().Delete(ctx, comment.ID)
	})
}

// ToggleLike likes or unlikes the comment for userID.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID uint) ([]models.CommentLike, bool, error) {
	ctx, span := observability.StartSpan(ctx, "CommentService", "ToggleLike",
		attribute.Int("comment.id", int(commentID)))

	var (
		likes   []models.CommentLike
		present bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		comment, err := tx.Comments().GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		likes, present = membership.Toggle(comment.Likes, userID, commentLikeUser, func() models.CommentLike {
			return models.CommentLike{UserID: userID, CommentID: commentID, CreatedAt: s.now()}
		})
		if present {
			return tx.Comments().RemoveLike(ctx, commentID, userID)
		}
		added := likes[len(likes)-1]
		return tx.Comments().AddLike(ctx, &added)
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, false, err
	}

	observability.RecordToggle("comment_like", present)
	return likes, present, nil
}
