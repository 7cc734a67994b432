package service

import (
	"context"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const goodPassword = "Corr3ct-Horse!"

func TestAuthService_SignupAndLogin(t *testing.T) {
	store, _ := setupStore(t)
	svc := NewAuthService(store.Users(), bcrypt.MinCost)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: " Alice@Example.com", Password: goodPassword})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, goodPassword, user.Password)

	logged, err := svc.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: goodPassword})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestAuthService_SignupConflicts(t *testing.T) {
	store, _ := setupStore(t)
	svc := NewAuthService(store.Users(), bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com", Password: goodPassword})
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      SignupInput
		message string
	}{
		{"username", SignupInput{Username: "alice", Email: "other@example.com", Password: goodPassword}, "Username is already taken"},
		{"email", SignupInput{Username: "alice2", Email: "alice@example.com", Password: goodPassword}, "Email is already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.in)
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.KindConflict))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc := NewAuthService(&userRepoStub{}, bcrypt.MinCost)

	_, err := svc.Signup(context.Background(), SignupInput{Username: "a", Email: "nope", Password: "weak"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Errors, 3)
}

func TestAuthService_LoginFailures(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(goodPassword), bcrypt.MinCost)
	require.NoError(t, err)
	users := &userRepoStub{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email == "alice@example.com" {
				return &models.User{ID: 1, Email: email, Password: string(hashed)}, nil
			}
			return nil, nil
		},
	}
	svc := NewAuthService(users, bcrypt.MinCost)

	for _, in := range []LoginInput{
		{Email: "alice@example.com", Password: "wrong-password"},
		{Email: "bob@example.com", Password: goodPassword},
	} {
		_, err := svc.Login(context.Background(), in)
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindUnauthorized))
		assert.Equal(t, "Invalid email or password", err.Error())
	}
}

var _ repository.UserRepository = (*userRepoStub)(nil)
