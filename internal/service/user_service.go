package service

import (
	"context"
	"strings"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService manages profiles and account deletion.
type UserService struct {
	store repository.Store
}

// UpdateUserInput carries the profile fields to change; nil means unchanged.
type UpdateUserInput struct {
	ActorID  uint    `json:"-"`
	UserID   uint    `json:"-"`
	Username *string `json:"username" validate:"omitnil,username"`
	Email    *string `json:"email" validate:"omitnil,email"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=2048"`
	Password *string `json:"password" validate:"omitnil,password"`
}

// NewUserService returns a UserService over store.
func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// GetProfile returns the user with follower and following sets filled in.
// Profiles are cached until the user or their follow edges change.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := loadProfile(ctx, s.store, id)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func loadProfile(ctx context.Context, store repository.Store, id uint) (*models.User, error) {
	user, err := store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	followers, err := store.Follows().FollowerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := store.Follows().FollowingIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	setFollowSets(user, followers, following)
	return user, nil
}

// ListUsers returns users ordered by name, optionally filtered by query.
func (s *UserService) ListUsers(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, error) {
	users, err := s.store.Users().List(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

// UpdateProfile changes the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	if in.ActorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		in.Username = &username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &email
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateUsers(ctx, user.ID)
	return loadProfile(ctx, s.store, user.ID)
}

// DeleteUser removes the caller's account and everything hanging off it:
// posts with their comments and likes, the user's own comments and likes,
// follow edges and messages. All of it commits in one transaction.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID uint) error {
	if actorID != userID {
		return models.NewForbiddenError("You can only delete your own account")
	}

	var affected []uint
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}

		followers, err := tx.Follows().FollowerIDs(ctx, userID)
		if err != nil {
			return err
		}
		following, err := tx.Follows().FollowingIDs(ctx, userID)
		if err != nil {
			return err
		}
		affected = append(append([]uint{userID}, followers...), following...)

		postIDs, err := tx.Posts().IDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := deletePosts(ctx, tx, postIDs); err != nil {
			return err
		}
		if err := tx.Comments().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Comments().DeleteLikesByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Posts().DeleteLikesByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Follows().DeleteForUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Messages().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	cache.InvalidateUsers(ctx, affected...)
	return nil
}
