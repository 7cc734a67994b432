package service

import (
	"context"

	"agora/internal/cache"
	"agora/internal/membership"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FollowService toggles follow edges and lists the follow sets.
type FollowService struct {
	store repository.Store
}

// NewFollowService returns a FollowService over store.
func NewFollowService(store repository.Store) *FollowService {
	return &FollowService{store: store}
}

func identity(id uint) uint { return id }

// ToggleFollow makes actorID follow targetID, or unfollow if it already
// does. The returned user is the target with its updated follow sets.
func (s *FollowService) ToggleFollow(ctx context.Context, actorID, targetID uint) (*models.User, bool, error) {
	if actorID == targetID {
		return nil, false, models.NewValidationError("You cannot follow yourself")
	}

	ctx, span := observability.StartSpan(ctx, "FollowService", "ToggleFollow",
		attribute.Int("target.id", int(targetID)))

	var (
		target  *models.User
		present bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		target, err = tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, actorID); err != nil {
			if models.IsKind(err, models.KindNotFound) {
				return models.NewNotFoundError("Authenticated user")
			}
			return err
		}

		followers, err := tx.Follows().FollowerIDs(ctx, targetID)
		if err != nil {
			return err
		}
		followers, present = membership.Toggle(followers, actorID, identity, func() uint { return actorID })

		// one edge row backs both target.followers and actor.following
		if present {
			err = tx.Follows().Remove(ctx, actorID, targetID)
		} else {
			err = tx.Follows().Add(ctx, actorID, targetID)
		}
		if err != nil {
			return err
		}

		following, err := tx.Follows().FollowingIDs(ctx, targetID)
		if err != nil {
			return err
		}
		setFollowSets(target, followers, following)
		return nil
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, false, err
	}

	cache.InvalidateUsers(ctx, actorID, targetID)
	observability.RecordToggle("follow", present)
	return target, present, nil
}

// Followers returns the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	return s.list(ctx, userID, s.store.Follows().FollowerIDs)
}

// Following returns the users userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	return s.list(ctx, userID, s.store.Follows().FollowingIDs)
}

func (s *FollowService) list(ctx context.Context, userID uint, ids func(context.Context, uint) ([]uint, error)) ([]models.UserSummary, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	userIDs, err := ids(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.Users().GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

func setFollowSets(u *models.User, followers, following []uint) {
	if followers == nil {
		followers = []uint{}
	}
	if following == nil {
		following = []uint{}
	}
	u.Followers = followers
	u.Following = following
	u.FollowersCount = len(followers)
	u.FollowingCount = len(following)
}
