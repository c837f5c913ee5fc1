package postgres

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	goerrors "errors"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	model := userModel{
		ID:            user.ID.String(),
		Username:      user.Username,
		UsernameLower: strings.ToLower(user.Username),
		Email:         user.Email,
		EmailLower:    strings.ToLower(user.Email),
		PasswordHash:  user.PasswordHash,
		CreatedAt:     user.CreatedAt,
	}
	err := s.db.WithContext(ctx).Create(&model).Error
	if goerrors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.User{}, errors.ErrUserAlreadyExists
	}
	if err != nil {
		return domain.User{}, err
	}
	return model.toDomain(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return s.firstUser(ctx, "id = ?", id.String())
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.firstUser(ctx, "username_lower = ?", strings.ToLower(username))
}

func (s *Store) firstUser(ctx context.Context, query string, arg any) (domain.User, error) {
	var model userModel
	err := s.db.WithContext(ctx).Where(query, arg).First(&model).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return model.toDomain(), nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]domain.User, error) {
	out := make(map[domain.UserID]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var models []userModel
	rawIDs := lo.Uniq(lo.Map(ids, func(id domain.UserID, _ int) string { return id.String() }))
	if err := s.db.WithContext(ctx).Where("id IN ?", rawIDs).Find(&models).Error; err != nil {
		return nil, err
	}
	for _, m := range models {
		out[domain.UserID(m.ID)] = m.toDomain()
	}
	return out, nil
}

func (s *Store) ListUsers(ctx context.Context, exclude domain.UserID) ([]domain.User, error) {
	var models []userModel
	if err := s.db.WithContext(ctx).Where("id <> ?", exclude.String()).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return lo.Map(models, func(m userModel, _ int) domain.User { return m.toDomain() }), nil
}
