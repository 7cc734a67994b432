package service

import (
	"context"
	"testing"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// userRepoStub is a stub for repository.UserRepository. Unset funcs
// return zero values.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return &models.User{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, models.User{ID: id})
	}
	return users, nil
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		user.ID = 1
		return nil
	}
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(context.Context, uint) error { return nil }
func (s *userRepoStub) List(context.Context, string, int, int) ([]models.User, error) {
	return []models.User{}, nil
}

// followRepoStub keeps edges in memory.
type followRepoStub struct {
	edges map[[2]uint]bool
	addFn func(context.Context, uint, uint) error
}

func newFollowRepoStub() *followRepoStub {
	return &followRepoStub{edges: map[[2]uint]bool{}}
}

func (s *followRepoStub) FollowerIDs(_ context.Context, userID uint) ([]uint, error) {
	var ids []uint
	for e := range s.edges {
		if e[1] == userID {
			ids = append(ids, e[0])
		}
	}
	return ids, nil
}
func (s *followRepoStub) FollowingIDs(_ context.Context, userID uint) ([]uint, error) {
	var ids []uint
	for e := range s.edges {
		if e[0] == userID {
			ids = append(ids, e[1])
		}
	}
	return ids, nil
}
func (s *followRepoStub) Add(ctx context.Context, follower, followee uint) error {
	if s.addFn != nil {
		if err := s.addFn(ctx, follower, followee); err != nil {
			return err
		}
	}
	s.edges[[2]uint{follower, followee}] = true
	return nil
}
func (s *followRepoStub) Remove(_ context.Context, follower, followee uint) error {
	delete(s.edges, [2]uint{follower, followee})
	return nil
}
func (s *followRepoStub) DeleteForUser(context.Context, uint) error { return nil }

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.Post, error)
	addLikeFn    func(context.Context, *models.PostLike) error
	removeLikeFn func(context.Context, uint, uint) error
	updateFn     func(context.Context, *models.Post) error
}

func (s *postRepoStub) Create(_ context.Context, post *models.Post) error {
	post.ID = 1
	return nil
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Post")
	}
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(context.Context, int, int) ([]*models.Post, error) {
	return []*models.Post{}, nil
}
func (s *postRepoStub) ListByUser(context.Context, uint, int, int) ([]*models.Post, error) {
	return []*models.Post{}, nil
}
func (s *postRepoStub) ListByAuthors(context.Context, []uint, int, int) ([]*models.Post, error) {
	return []*models.Post{}, nil
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) IDsByUser(context.Context, uint) ([]uint, error) { return nil, nil }
func (s *postRepoStub) DeleteByIDs(context.Context, []uint) error       { return nil }
func (s *postRepoStub) AddLike(ctx context.Context, like *models.PostLike) error {
	if s.addLikeFn == nil {
		return nil
	}
	return s.addLikeFn(ctx, like)
}
func (s *postRepoStub) RemoveLike(ctx context.Context, postID, userID uint) error {
	if s.removeLikeFn == nil {
		return nil
	}
	return s.removeLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) DeleteLikesByPosts(context.Context, []uint) error { return nil }
func (s *postRepoStub) DeleteLikesByUser(context.Context, uint) error    { return nil }

// messageRepoStub serves a fixed inbox.
type messageRepoStub struct {
	received []models.Message
	senders  []models.Sender
	created  []*models.Message
}

func (s *messageRepoStub) Create(_ context.Context, m *models.Message) error {
	m.ID = uint(len(s.created) + 1)
	s.created = append(s.created, m)
	return nil
}
func (s *messageRepoStub) Thread(context.Context, uint, uint, int, int) ([]models.Message, error) {
	return []models.Message{}, nil
}
func (s *messageRepoStub) Received(context.Context, uint) ([]models.Message, error) {
	return s.received, nil
}
func (s *messageRepoStub) AggregateSenders(context.Context, uint) ([]models.Sender, error) {
	return s.senders, nil
}
func (s *messageRepoStub) DeleteByUser(context.Context, uint) error { return nil }

// stubStore wires the stubs together. Transaction runs fn directly.
type stubStore struct {
	users    *userRepoStub
	follows  *followRepoStub
	posts    *postRepoStub
	messages *messageRepoStub
}

func newStubStore() *stubStore {
	return &stubStore{
		users:    &userRepoStub{},
		follows:  newFollowRepoStub(),
		posts:    &postRepoStub{},
		messages: &messageRepoStub{},
	}
}

func (s *stubStore) Users() repository.UserRepository       { return s.users }
func (s *stubStore) Follows() repository.FollowRepository   { return s.follows }
func (s *stubStore) Posts() repository.PostRepository       { return s.posts }
func (s *stubStore) Comments() repository.CommentRepository { return nil }
func (s *stubStore) Messages() repository.MessageRepository { return s.messages }
func (s *stubStore) Transaction(_ context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// setupStore returns a real store on an in-memory SQLite database.
func setupStore(t *testing.T) (repository.Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	return repository.NewStore(db), db
}

func mustCreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}
