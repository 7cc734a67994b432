package service

import (
	"context"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_FollowThenUnfollowIsSymmetric(t *testing.T) {
	store, db := setupStore(t)
	svc := NewFollowService(store)
	users := NewUserService(store)
	ctx := context.Background()

	a := mustCreateUser(t, db, "a1")
	b := mustCreateUser(t, db, "b1")

	target, present, err := svc.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, present)
	assert.Equal(t, []uint{a.ID}, target.Followers)
	assert.Equal(t, 1, target.FollowersCount)

	actor, err := users.GetProfile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, actor.Following)

	target, present, err = svc.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Empty(t, target.Followers)

	actor, err = users.GetProfile(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, actor.Following)
}

func TestFollowService_RejectsSelfFollow(t *testing.T) {
	svc := NewFollowService(newStubStore())

	_, _, err := svc.ToggleFollow(context.Background(), 5, 5)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
	assert.Equal(t, "You cannot follow yourself", err.Error())
}

func TestFollowService_MissingUsers(t *testing.T) {
	tests := []struct {
		name    string
		missing uint
		message string
	}{
		{name: "target", missing: 2, message: "User not found"},
		{name: "actor", missing: 1, message: "Authenticated user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStubStore()
			store.users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
				if id == tt.missing {
					return nil, models.NewNotFoundError("User")
				}
				return &models.User{ID: id}, nil
			}

			_, _, err := NewFollowService(store).ToggleFollow(context.Background(), 1, 2)
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.KindNotFound))
			assert.Equal(t, tt.message, err.Error())
			assert.Empty(t, store.follows.edges)
		})
	}
}

func TestFollowService_TogglePairRestoresState(t *testing.T) {
	for _, startFollowing := range []bool{false, true} {
		store := newStubStore()
		if startFollowing {
			store.follows.edges[[2]uint{1, 2}] = true
		}
		svc := NewFollowService(store)
		ctx := context.Background()

		_, first, err := svc.ToggleFollow(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, !first, store.follows.edges[[2]uint{1, 2}])

		_, second, err := svc.ToggleFollow(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, startFollowing, first)
		assert.Equal(t, !startFollowing, second)
		assert.Equal(t, startFollowing, store.follows.edges[[2]uint{1, 2}])
	}
}

func TestFollowService_Lists(t *testing.T) {
	store, db := setupStore(t)
	svc := NewFollowService(store)
	ctx := context.Background()

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")
	c := mustCreateUser(t, db, "carol")
	for _, follower := range []uint{a.ID, c.ID} {
		_, _, err := svc.ToggleFollow(ctx, follower, b.ID)
		require.NoError(t, err)
	}

	followers, err := svc.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{a.Summary(), c.Summary()}, followers)

	following, err := svc.Following(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{b.Summary()}, following)

	_, err = svc.Followers(ctx, 999)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}
