package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService registers accounts and checks credentials. Token issuance
// lives in the middleware package.
type AuthService struct {
	users repository.UserRepository
	cost  int
}

type SignupInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// NewAuthService returns an AuthService. cost is the bcrypt cost; values
// outside bcrypt's range fall back to the default.
func NewAuthService(users repository.UserRepository, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, cost: cost}
}

// Signup creates the account after checking that the username and email are free.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username is already taken")
	}
	existing, err = s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login returns the user whose email and password match.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}
