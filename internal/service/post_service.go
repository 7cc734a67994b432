// Package service holds the business rules that sit between the HTTP
// handlers and the repositories.
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

// PostService manages posts, their likes and their cascading deletion.
type PostService struct {
	store repository.Store
	now   func() time.Time
}

type CreatePostInput struct {
	UserID   uint   `json:"-"`
	Title    string `json:"title" validate:"required,max=300"`
	Content  string `json:"content" validate:"required,max=50000"`
	ImageURL string `json:"image_url" validate:"omitempty,max=2048"`
}

type UpdatePostInput struct {
	UserID   uint    `json:"-"`
	PostID   uint    `json:"-"`
	Title    *string `json:"title" validate:"omitempty,min=1,max=300"`
	Content  *string `json:"content" validate:"omitempty,min=1,max=50000"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=2048"`
}

type DeletePostInput struct {
	UserID uint `json:"-"`
	PostID uint `json:"-"`
}

// NewPostService returns a PostService over store.
func NewPostService(store repository.Store) *PostService {
	return &PostService{store: store, now: time.Now}
}

func postLikeUser(l models.PostLike) uint { return l.UserID }

// CreatePost stores a post for an existing author and returns it with the
// author loaded.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var created *models.Post
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, in.UserID); err != nil {
			return err
		}
		post := &models.Post{
			Title:    in.Title,
			Content:  in.Content,
			ImageURL: in.ImageURL,
			UserID:   in.UserID,
		}
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		var err error
		created, err = tx.Posts().GetByID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetPost returns the post with its comments, oldest first.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		post.Comments = append(post.Comments, *c)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.store.Posts().List(ctx, limit, offset)
}

// ListUserPosts returns the posts written by userID, newest first.
func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Posts().ListByUser(ctx, userID, limit, offset)
}

// Feed returns posts by the users userID follows and by userID itself.
func (s *PostService) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	following, err := s.store.Follows().FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Posts().ListByAuthors(ctx, append(following, userID), limit, offset)
}

// UpdatePost applies the non-nil fields. Only the author may edit a post.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	post, err := s.store.Posts().GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		post.Content = strings.TrimSpace(*in.Content)
	}
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}
	if err := s.store.Posts().Update(ctx, post); err != nil {
		return nil, err
	}
	return s.store.Posts().GetByID(ctx, post.ID)
}

// DeletePost removes the post together with its comments and likes.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		if post.UserID != in.UserID {
			return models.NewForbiddenError("You can only delete your own posts")
		}
		return deletePosts(ctx, tx, []uint{post.ID})
	})
}

// deletePosts is the post cascade shared with user deletion.
func deletePosts(ctx context.Context, tx repository.Store, ids []uint) error {
	if err := tx.Comments().DeleteByPosts(ctx, ids); err != nil {
		return err
	}
	if err := tx.Posts().DeleteLikesByPosts(ctx, ids); err != nil {
		return err
	}
	return tx.Posts().DeleteByIDs(ctx, ids)
}

// ToggleLike likes the post for userID, or unlikes it if already liked.
// It returns the resulting like set and whether the like was already there.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) ([]models.PostLike, bool, error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "ToggleLike",
		attribute.Int("post.id", int(postID)))

	var (
		likes   []models.PostLike
		present bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return err
		}
		likes, present = membership.Toggle(post.Likes, userID, postLikeUser, func() models.PostLike {
			return models.PostLike{UserID: userID, PostID: postID, CreatedAt: s.now()}
		})
		if present {
			return tx.Posts().RemoveLike(ctx, postID, userID)
		}
		added := likes[len(likes)-1]
		return tx.Posts().AddLike(ctx, &added)
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, false, err
	}

	observability.RecordToggle("post_like", present)
	return likes, present, nil
}
