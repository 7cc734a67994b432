package seed

import (
	"fmt"
	"log/slog"

	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"

	"gorm.io/gorm"
)

// Options tune the generated data set.
type Options struct {
	Users           int
	PostsPerUser    int
	FollowsPerUser  int
	MessagesPerUser int
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays    int
	SkipBcrypt bool
	// RandSeed makes runs reproducible when non-zero.
	RandSeed int64
}

// DefaultOptions is the data set used by cmd/seed without flags.
var DefaultOptions = Options{
	Users:           50,
	PostsPerUser:    4,
	FollowsPerUser:  8,
	MessagesPerUser: 5,
	MaxDays:         90,
}

// Result counts what a run created.
type Result struct {
	Users    int
	Posts    int
	Follows  int
	Messages int
}

// Seeder populates a database with a connected social graph.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder returns a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f, opts: opts}, nil
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll() error {
	tables := database.Models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	middleware.Logger.Info("database cleared")
	return nil
}

// Run generates users, then their follows, posts with likes and comments,
// and finally direct messages.
func (s *Seeder) Run() (*Result, error) {
	res := &Result{}
	if s.opts.Users <= 0 {
		return res, nil
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := range s.opts.Users {
		u, err := s.factory.CreateUser(i + 1)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)

	follows, err := s.seedFollows(users)
	if err != nil {
		return nil, err
	}
	res.Follows = follows

	posts, err := s.seedPosts(users)
	if err != nil {
		return nil, err
	}
	res.Posts = posts

	messages, err := s.seedMessages(users)
	if err != nil {
		return nil, err
	}
	res.Messages = messages

	middleware.Logger.Info("seed completed",
		slog.Int("users", res.Users),
		slog.Int("posts", res.Posts),
		slog.Int("follows", res.Follows),
		slog.Int("messages", res.Messages),
	)
	return res, nil
}

func (s *Seeder) seedFollows(users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	for _, u := range users {
		for range min(s.opts.FollowsPerUser, len(users)-1) {
			if err := s.factory.CreateFollow(u, users[s.factory.pick(len(users))]); err != nil {
				return 0, fmt.Errorf("create follow: %w", err)
			}
		}
	}
	var n int64
	if err := s.db.Model(&models.Follow{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Seeder) seedPosts(users []*models.User) (int, error) {
	posts := make([]*models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, u := range users {
		for range s.opts.PostsPerUser {
			posts = append(posts, s.factory.BuildPost(u))
		}
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return 0, fmt.Errorf("create posts: %w", err)
	}

	for _, p := range posts {
		for range s.factory.pick(4) {
			if err := s.factory.CreatePostLike(users[s.factory.pick(len(users))], p); err != nil {
				return 0, fmt.Errorf("create like: %w", err)
			}
		}
		for range s.factory.pick(3) {
			if _, err := s.factory.CreateComment(users[s.factory.pick(len(users))], p); err != nil {
				return 0, fmt.Errorf("create comment: %w", err)
			}
		}
	}
	return len(posts), nil
}

func (s *Seeder) seedMessages(users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	n := 0
	for _, sender := range users {
		for range s.opts.MessagesPerUser {
			receiver := users[s.factory.pick(len(users))]
			if receiver.ID == sender.ID {
				continue
			}
			if _, err := s.factory.CreateMessage(sender, receiver); err != nil {
				return 0, fmt.Errorf("create message: %w", err)
			}
			n++
		}
	}
	return n, nil
}
