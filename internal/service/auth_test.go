package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
	"realtime-chat/internal/repository/mocks"
	"realtime-chat/internal/service"
)

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	authService, err := service.NewAuthService(mockUserRepo, "very-secret-key", 1)
	require.NoError(t, err)

	ctx := context.Background()
	username := "newbie"
	password := "StrongPass123"
	email := "newbie@example.com"

	mockUserRepo.On("Save", ctx, mock.MatchedBy(func(user *domain.User) bool {
		assert.Equal(t, username, user.Username)
		assert.Equal(t, email, user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)),
			"password should be stored hashed")
		return true
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 5
	}).Return(nil).Once()

	// Act
	registered, err := authService.Register(ctx, username, password, email)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, registered)
	assert.Equal(t, uint(5), registered.ID)
	assert.Empty(t, registered.Password, "password hash must not leak out")
	assert.Equal(t, domain.UserRoleUser, registered.Role)

	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEntry(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "secret", 1)
	ctx := context.Background()

	mockUserRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).
		Return(repository.ErrDuplicateEntry).Once()

	_, err := authService.Register(ctx, "existingUser", "password123", "email@test.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRegistrationFailed))
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_WeakPasswordRejected(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "secret", 1)

	_, err := authService.Register(context.Background(), "user", "short", "email@test.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	secret := "very-secret-key"
	authService, _ := service.NewAuthService(mockUserRepo, secret, 1)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &domain.User{ID: 5, Username: "alice", Password: string(hashed), Role: domain.UserRoleUser}
	mockUserRepo.On("FindByUsername", ctx, "alice").Return(user, nil).Once()

	token, err := authService.Login(ctx, "alice", "correct-horse")

	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The token must carry the identity claims and verify with the secret.
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(5), claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, domain.UserRoleUser, claims["role"])
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "secret", 1)
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	user := &domain.User{ID: 5, Username: "alice", Password: string(hashed)}
	mockUserRepo.On("FindByUsername", ctx, "alice").Return(user, nil).Once()

	_, err := authService.Login(ctx, "alice", "wrongpass")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "secret", 1)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "ghost").Return(nil, repository.ErrUserNotFound).Once()

	_, err := authService.Login(ctx, "ghost", "whatever")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed),
		"unknown user and wrong password must be indistinguishable")
}
