package postgres

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	goerrors "errors"
	"slices"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

func (s *Store) CreateMessage(ctx context.Context, message domain.Message) (domain.Message, error) {
	model := messageModel{
		ID:             message.ID.String(),
		ConversationID: message.ConversationID.String(),
		SenderID:       message.SenderID.String(),
		Content:        message.Content,
		CreatedAt:      message.CreatedAt,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConversation(tx, message.ConversationID); err != nil {
			return err
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		return touch(tx, message.ConversationID, message.CreatedAt)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return model.toDomain(), nil
}

func (s *Store) GetMessage(ctx context.Context, id domain.MessageID) (domain.Message, error) {
	return getMessage(s.db.WithContext(ctx), id)
}

func (s *Store) UpdateMessageContent(ctx context.Context, id domain.MessageID, content string) (domain.Message, error) {
	var updated domain.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&messageModel{}).Where("id = ?", id.String()).Update("content", content)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.ErrMessageNotFound
		}
		var err error
		updated, err = getMessage(tx, id)
		return err
	})
	return updated, err
}

func (s *Store) DeleteMessage(ctx context.Context, id domain.MessageID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&messageModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrMessageNotFound
	}
	return nil
}

// ListMessages returns the messages oldest first, only the most recent
// ones when a limit is configured.
func (s *Store) ListMessages(ctx context.Context, conversationID domain.ConversationID) ([]domain.Message, error) {
	query := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID.String())
	var models []messageModel
	if s.limitMessages != nil {
		if err := query.Order("id DESC").Limit(*s.limitMessages).Find(&models).Error; err != nil {
			return nil, err
		}
		slices.Reverse(models)
	} else if err := query.Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return lo.Map(models, func(m messageModel, _ int) domain.Message { return m.toDomain() }), nil
}

func getMessage(db *gorm.DB, id domain.MessageID) (domain.Message, error) {
	var model messageModel
	err := db.Where("id = ?", id.String()).First(&model).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Message{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}
	return model.toDomain(), nil
}
