//go:generate go run go.uber.org/mock/mockgen -source=user_service.go -destination=../mocks/mock_user_service.go -package=mocks
package services

import (
	"chat-hub/domain"
	"chat-hub/repositories"
	"context"

	"github.com/samber/lo"
)

type IUserService interface {
	// ListUsers returns every user but the caller.
	ListUsers(ctx context.Context, callerID domain.UserID) ([]domain.PublicUser, error)
	GetUser(ctx context.Context, id domain.UserID) (domain.PublicUser, error)
}

type UserService struct {
	users repositories.IUserRepository
}

func NewUserService(users repositories.IUserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) ListUsers(ctx context.Context, callerID domain.UserID) ([]domain.PublicUser, error) {
	users, err := s.users.ListUsers(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u domain.User, _ int) domain.PublicUser { return u.Public() }), nil
}

func (s *UserService) GetUser(ctx context.Context, id domain.UserID) (domain.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}
