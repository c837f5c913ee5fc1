package services

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T) (*AuthService, *mocks.MockIUserRepository) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(logs.GetLoggerFromLevel(slog.LevelDebug), users, auth.NewTokenManager("secret", time.Hour))
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "u-new" }
	return svc, users
}

func TestAuthService_Signup_Stores_Normalized_Identity(t *testing.T) {
	req := require.New(t)
	svc, users := newAuthService(t)

	// Given a repository storing what it receives
	users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user domain.User) (domain.User, error) { return user, nil })

	// When signing up with a padded mixed case email
	session, err := svc.Signup(context.Background(), " Alice@Example.COM ", " alice ", "Str0ng-Passw0rd!")
	req.NoError(err)

	// Then the whole email is lowercased and the username trimmed
	req.Equal("alice@example.com", session.User.Email)
	req.Equal("alice", session.User.Username)
	req.Equal(domain.UserID("u-new"), session.User.ID)
	req.NotEmpty(session.AccessToken)
}

func TestAuthService_Signup_Rejects_Weak_Password_Before_Storing(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthService(t)

	// No CreateUser expectation: the repository must never be reached
	_, err := svc.Signup(context.Background(), "alice@example.com", "alice", "password-alice")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}
