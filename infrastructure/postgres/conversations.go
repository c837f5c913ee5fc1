package postgres

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	goerrors "errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) GetConversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, error) {
	return getConversation(s.db.WithContext(ctx), id)
}

func (s *Store) FindDirectConversation(ctx context.Context, a, b domain.UserID) (domain.Conversation, error) {
	var model conversationModel
	err := withParticipants(s.db.WithContext(ctx)).
		Where("direct_key = ?", domain.DirectPairKey(a, b)).
		First(&model).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Conversation{}, errors.ErrConversationNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	return model.toDomain(), nil
}

func (s *Store) CreateDirectConversation(ctx context.Context, conv domain.Conversation, a, b domain.UserID) (domain.Conversation, error) {
	model := conversationModel{
		ID:        conv.ID.String(),
		IsGroup:   false,
		DirectKey: lo.ToPtr(domain.DirectPairKey(a, b)),
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	var created domain.Conversation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = insertConversation(tx, model, []domain.UserID{a, b})
		return err
	})
	// The pair got its conversation from a concurrent call
	if goerrors.Is(err, gorm.ErrDuplicatedKey) {
		return s.FindDirectConversation(ctx, a, b)
	}
	return created, err
}

func (s *Store) CreateGroupConversation(ctx context.Context, conv domain.Conversation, participantIDs []domain.UserID) (domain.Conversation, error) {
	model := conversationModel{
		ID:        conv.ID.String(),
		IsGroup:   true,
		Name:      conv.Name,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	var created domain.Conversation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = insertConversation(tx, model, lo.Uniq(participantIDs))
		return err
	})
	return created, err
}

func (s *Store) AddParticipants(ctx context.Context, id domain.ConversationID, userIDs []domain.UserID, at time.Time) (domain.Conversation, error) {
	var conv domain.Conversation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConversation(tx, id); err != nil {
			return err
		}
		rows := lo.Map(lo.Uniq(userIDs), func(userID domain.UserID, _ int) participantModel {
			return participantModel{ConversationID: id.String(), UserID: userID.String(), JoinedAt: at}
		})
		if len(rows) > 0 {
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				if err := touch(tx, id, at); err != nil {
					return err
				}
			}
		}
		var err error
		conv, err = getConversation(tx, id)
		return err
	})
	return conv, err
}

func (s *Store) RemoveParticipant(ctx context.Context, id domain.ConversationID, userID domain.UserID, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConversation(tx, id); err != nil {
			return err
		}
		result := tx.Where("conversation_id = ? AND user_id = ?", id.String(), userID.String()).Delete(&participantModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.ErrNotParticipant
		}
		return touch(tx, id, at)
	})
}

func (s *Store) RenameConversation(ctx context.Context, id domain.ConversationID, name string, at time.Time) (domain.Conversation, error) {
	var conv domain.Conversation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&conversationModel{}).Where("id = ?", id.String()).Updates(map[string]any{
			"name":       name,
			"updated_at": gorm.Expr("GREATEST(updated_at, ?)", at),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.ErrConversationNotFound
		}
		var err error
		conv, err = getConversation(tx, id)
		return err
	})
	return conv, err
}

func (s *Store) ListConversationsForUser(ctx context.Context, userID domain.UserID) ([]domain.ConversationDetails, error) {
	var models []conversationModel
	err := withParticipants(s.db.WithContext(ctx)).
		Where("id IN (?)", memberOf(s.db, userID)).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return s.withLastMessages(ctx, models)
}

func (s *Store) SearchConversationsForUser(ctx context.Context, userID domain.UserID, term string) ([]domain.ConversationDetails, error) {
	var models []conversationModel
	err := withParticipants(s.db.WithContext(ctx)).
		Where("id IN (?)", memberOf(s.db, userID)).
		Where("is_group AND name ILIKE ?", "%"+likeEscaper.Replace(term)+"%").
		Order("updated_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return s.withLastMessages(ctx, models)
}

// withLastMessages attaches the most recent message of each conversation.
func (s *Store) withLastMessages(ctx context.Context, models []conversationModel) ([]domain.ConversationDetails, error) {
	details := make([]domain.ConversationDetails, 0, len(models))
	if len(models) == 0 {
		return details, nil
	}
	ids := lo.Map(models, func(m conversationModel, _ int) string { return m.ID })

	var last []messageModel
	err := s.db.WithContext(ctx).Raw(
		`SELECT DISTINCT ON (conversation_id) * FROM messages WHERE conversation_id IN ? ORDER BY conversation_id, id DESC`, ids,
	).Scan(&last).Error
	if err != nil {
		return nil, err
	}
	byConversation := lo.SliceToMap(last, func(m messageModel) (string, domain.Message) { return m.ConversationID, m.toDomain() })

	for _, m := range models {
		d := domain.ConversationDetails{Conversation: m.toDomain()}
		if msg, ok := byConversation[m.ID]; ok {
			d.LastMessage = lo.ToPtr(msg)
		}
		details = append(details, d)
	}
	return details, nil
}

func insertConversation(tx *gorm.DB, model conversationModel, participantIDs []domain.UserID) (domain.Conversation, error) {
	if err := tx.Omit(clause.Associations).Create(&model).Error; err != nil {
		return domain.Conversation{}, err
	}
	rows := lo.Map(participantIDs, func(userID domain.UserID, _ int) participantModel {
		return participantModel{ConversationID: model.ID, UserID: userID.String(), JoinedAt: model.CreatedAt}
	})
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return domain.Conversation{}, err
		}
	}
	return getConversation(tx, domain.ConversationID(model.ID))
}

func getConversation(db *gorm.DB, id domain.ConversationID) (domain.Conversation, error) {
	var model conversationModel
	err := withParticipants(db).Where("id = ?", id.String()).First(&model).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Conversation{}, errors.ErrConversationNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	return model.toDomain(), nil
}

// lockConversation serializes participant changes of one conversation.
func lockConversation(tx *gorm.DB, id domain.ConversationID) error {
	var model conversationModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", id.String()).First(&model).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrConversationNotFound
	}
	return err
}

func touch(tx *gorm.DB, id domain.ConversationID, at time.Time) error {
	return tx.Model(&conversationModel{}).Where("id = ?", id.String()).
		Update("updated_at", gorm.Expr("GREATEST(updated_at, ?)", at)).Error
}

func withParticipants(db *gorm.DB) *gorm.DB {
	return db.Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("user_id") })
}

func memberOf(db *gorm.DB, userID domain.UserID) *gorm.DB {
	return db.Model(&participantModel{}).Select("conversation_id").Where("user_id = ?", userID.String())
}
