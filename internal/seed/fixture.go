package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"agora/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixture is a hand-written scenario. Every reference to a user is by
// username and must name a user declared in Users or already stored.
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Follows  []FixtureFollow  `yaml:"follows"`
	Posts    []FixturePost    `yaml:"posts"`
	Messages []FixtureMessage `yaml:"messages"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Bio      string `yaml:"bio"`
	Avatar   string `yaml:"avatar"`
}

type FixtureFollow struct {
	Follower string `yaml:"follower"`
	Followee string `yaml:"followee"`
}

type FixturePost struct {
	Author   string           `yaml:"author"`
	Title    string           `yaml:"title"`
	Content  string           `yaml:"content"`
	ImageURL string           `yaml:"image_url"`
	Likes    []string         `yaml:"likes"`
	Comments []FixtureComment `yaml:"comments"`
}

type FixtureComment struct {
	Author  string   `yaml:"author"`
	Content string   `yaml:"content"`
	Likes   []string `yaml:"likes"`
}

type FixtureMessage struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Content string `yaml:"content"`
}

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	// #nosec G304: path comes from a CLI flag
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes a YAML fixture, rejecting unknown keys.
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i, u := range fx.Users {
		if strings.TrimSpace(u.Username) == "" {
			return nil, fmt.Errorf("parse fixture: users[%d] has no username", i)
		}
	}
	return &fx, nil
}

// ApplyFixture writes fx in a single transaction. Users that already exist
// are reused; follows and likes are idempotent.
func ApplyFixture(db *gorm.DB, fx *Fixture, bcryptCost int) (*Result, error) {
	if fx == nil {
		return nil, errors.New("nil fixture")
	}
	res := &Result{}
	err := db.Transaction(func(tx *gorm.DB) error {
		a := &fixtureApplier{tx: tx, cost: bcryptCost, ids: map[string]uint{}}
		for _, u := range fx.Users {
			if err := a.user(u); err != nil {
				return err
			}
			res.Users++
		}
		for _, f := range fx.Follows {
			if err := a.follow(f); err != nil {
				return err
			}
			res.Follows++
		}
		for _, p := range fx.Posts {
			if err := a.post(p); err != nil {
				return err
			}
			res.Posts++
		}
		for _, m := range fx.Messages {
			if err := a.message(m); err != nil {
				return err
			}
			res.Messages++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

type fixtureApplier struct {
	tx   *gorm.DB
	cost int
	ids  map[string]uint
}

func (a *fixtureApplier) user(u FixtureUser) error {
	password := u.Password
	if password == "" {
		password = DemoPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", u.Username, err)
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email == "" {
		email = strings.ToLower(u.Username) + "@example.com"
	}

	var user models.User
	err = a.tx.Where(models.User{Username: u.Username}).
		Attrs(models.User{Email: email, Password: string(hash), Bio: u.Bio, Avatar: u.Avatar}).
		FirstOrCreate(&user).Error
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	a.ids[u.Username] = user.ID
	return nil
}

// resolve maps a username to an id, falling back to the database for users
// not declared in the fixture.
func (a *fixtureApplier) resolve(username string) (uint, error) {
	if id, ok := a.ids[username]; ok {
		return id, nil
	}
	var user models.User
	err := a.tx.Select("id").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("unknown user %q", username)
	}
	if err != nil {
		return 0, err
	}
	a.ids[username] = user.ID
	return user.ID, nil
}

func (a *fixtureApplier) follow(f FixtureFollow) error {
	follower, err := a.resolve(f.Follower)
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	followee, err := a.resolve(f.Followee)
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	if follower == followee {
		return fmt.Errorf("follow: %s cannot follow themselves", f.Follower)
	}
	edge := &models.Follow{FollowerID: follower, FolloweeID: followee}
	return a.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
}

func (a *fixtureApplier) post(p FixturePost) error {
	author, err := a.resolve(p.Author)
	if err != nil {
		return fmt.Errorf("post %q: %w", p.Title, err)
	}
	post := &models.Post{Title: p.Title, Content: p.Content, ImageURL: p.ImageURL, UserID: author}
	if err := a.tx.Create(post).Error; err != nil {
		return fmt.Errorf("post %q: %w", p.Title, err)
	}
	for _, name := range p.Likes {
		id, err := a.resolve(name)
		if err != nil {
			return fmt.Errorf("post %q like: %w", p.Title, err)
		}
		like := &models.PostLike{UserID: id, PostID: post.ID}
		if err := a.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
			return err
		}
	}
	for _, c := range p.Comments {
		if err := a.comment(post.ID, c); err != nil {
			return fmt.Errorf("post %q: %w", p.Title, err)
		}
	}
	return nil
}

func (a *fixtureApplier) comment(postID uint, c FixtureComment) error {
	author, err := a.resolve(c.Author)
	if err != nil {
		return fmt.Errorf("comment: %w", err)
	}
	comment := &models.Comment{Content: c.Content, UserID: author, PostID: postID}
	if err := a.tx.Create(comment).Error; err != nil {
		return err
	}
	for _, name := range c.Likes {
		id, err := a.resolve(name)
		if err != nil {
			return fmt.Errorf("comment like: %w", err)
		}
		like := &models.CommentLike{UserID: id, CommentID: comment.ID}
		if err := a.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
			return err
		}
	}
	return nil
}

func (a *fixtureApplier) message(m FixtureMessage) error {
	from, err := a.resolve(m.From)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	to, err := a.resolve(m.To)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	if from == to {
		return fmt.Errorf("message: %s cannot message themselves", m.From)
	}
	msg := &models.Message{SenderID: from, ReceiverID: to, Content: m.Content}
	return a.tx.Create(msg).Error
}
