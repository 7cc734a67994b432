// Package seed creates demo and fixture data for development databases.
// None of it is used by the running server.
package seed

import (
	"fmt"
	"strings"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password of every generated account.
const DemoPassword = "Agora-Demo-Pass1!"

const maxUsernameLength = 30

// Factory builds entities with fake content and persists them.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	opts  Options
	hash  string
}

// NewFactory returns a Factory writing to db. A zero opts.RandSeed picks a
// time-based seed.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := &Factory{db: db, faker: gofakeit.New(seed), opts: opts}

	if opts.SkipBcrypt {
		f.hash = DemoPassword
		return f, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	f.hash = string(hash)
	return f, nil
}

// username derives a valid, unique handle for the n-th generated user.
func (f *Factory) username(n int) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, f.faker.Username())
	if base == "" {
		base = "user"
	}
	suffix := fmt.Sprintf("_%d", n)
	if len(base)+len(suffix) > maxUsernameLength {
		base = base[:maxUsernameLength-len(suffix)]
	}
	return base + suffix
}

// CreateUser persists a user. Overrides run before the insert.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	name := f.username(n)
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: f.hash,
		Bio:      f.faker.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", name),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by user with a created_at spread over
// the last opts.MaxDays days.
func (f *Factory) BuildPost(user *models.User) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	age := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute

	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:   f.faker.Paragraph(1, 3, 8, "\n"),
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-age),
	}
	if f.faker.Number(0, 9) < 4 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	return post
}

// CreatePostsBatch inserts posts in one statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 200).Error
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Content: f.faker.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreatePostLike records that user likes post. Repeats are ignored.
func (f *Factory) CreatePostLike(user *models.User, post *models.Post) error {
	like := &models.PostLike{UserID: user.ID, PostID: post.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateFollow records that follower follows followee. Repeats and
// self-follows are ignored.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	if follower.ID == followee.ID {
		return nil
	}
	edge := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
}

// CreateMessage persists a direct message from sender to receiver.
func (f *Factory) CreateMessage(sender, receiver *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	msg := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    f.faker.Sentence(f.faker.Number(3, 14)),
	}
	for _, override := range overrides {
		override(msg)
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// pick returns a random index in [0, n).
func (f *Factory) pick(n int) int {
	return f.faker.Number(0, n-1)
}
