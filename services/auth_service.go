//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/repositories"
	"context"
	goerrors "errors"
	"log/slog"
	"time"
)

type IAuthService interface {
	Signup(ctx context.Context, email, username, password string) (domain.AuthSession, error)
	Login(ctx context.Context, username, password string) (domain.AuthSession, error)
}

type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	tokens         *auth.TokenManager
	now            func() time.Time
	newID          func() string
}

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		log:            log,
		userRepository: repo,
		tokens:         tokens,
		now:            func() time.Time { return time.Now().UTC() },
		newID:          newID,
	}
}

func (s *AuthService) Signup(ctx context.Context, email, username, password string) (domain.AuthSession, error) {
	valReq := auth.SignupRequest{Email: email, Username: username, Password: password}
	if err := auth.NormalizeSignup(&valReq); err != nil {
		return domain.AuthSession{}, errors.Wrap(errors.KindBadRequest, "invalid signup request", err)
	}

	// Business rules first, before any expensive cryptographic operation.
	if err := auth.ValidateSignup(valReq); err != nil {
		return domain.AuthSession{}, err
	}

	hashedPassword, err := auth.HashPassword(valReq.Password)
	if err != nil {
		return domain.AuthSession{}, err
	}

	user, err := s.userRepository.CreateUser(ctx, domain.User{
		ID:           domain.UserID(s.newID()),
		Username:     valReq.Username,
		Email:        valReq.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return domain.AuthSession{}, err // ErrUserAlreadyExists when username or email is taken
	}
	s.log.Info("User signed up", "user", user.ID, "username", user.Username)

	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.AuthSession, error) {
	user, err := s.userRepository.GetUserByUsername(ctx, username)
	if err != nil {
		if goerrors.Is(err, errors.ErrUserNotFound) {
			// Same answer as a wrong password, no user enumeration.
			return domain.AuthSession{}, errors.ErrInvalidCredentials
		}
		return domain.AuthSession{}, err
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.AuthSession{}, errors.ErrInvalidCredentials
	}

	return s.session(user)
}

func (s *AuthService) session(user domain.User) (domain.AuthSession, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return domain.AuthSession{}, err
	}
	return domain.AuthSession{AccessToken: token, User: user.Public()}, nil
}
