// Package postgres is the relational Conversation Store. It implements the
// same repository interfaces as the embedded Badger store.
package postgres

import (
	"chat-hub/domain"
	"chat-hub/internal"
	"chat-hub/repositories"
	"fmt"
	"log"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	_ repositories.IUserRepository         = (*Store)(nil)
	_ repositories.IConversationRepository = (*Store)(nil)
	_ repositories.IMessageRepository      = (*Store)(nil)
)

type Store struct {
	db            *gorm.DB
	log           *slog.Logger
	limitMessages *int
}

// Open connects, migrates the schema and returns the store.
// Unique violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string, log *slog.Logger, limitMessages *int) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres opening failed: %w", err)
	}
	if err = db.AutoMigrate(&userModel{}, &conversationModel{}, &participantModel{}, &messageModel{}); err != nil {
		return nil, fmt.Errorf("postgres migration failed: %w", err)
	}
	return NewStore(db, log, limitMessages), nil
}

func NewStore(db *gorm.DB, log *slog.Logger, limitMessages *int) *Store {
	return &Store{db: db, log: log, limitMessages: limitMessages}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newGormLogger(l *slog.Logger) logger.Interface {
	return logger.New(
		log.New(internal.NewLogWriter(l, "gorm", slog.LevelWarn), "", 0),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

type userModel struct {
	ID            string    `gorm:"primaryKey;size:64"`
	Username      string    `gorm:"size:32;not null"`
	UsernameLower string    `gorm:"size:32;not null;uniqueIndex"`
	Email         string    `gorm:"size:190;not null"`
	EmailLower    string    `gorm:"size:190;not null;uniqueIndex"`
	PasswordHash  string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false"`
}

func (userModel) TableName() string { return "users" }

// DirectKey is set for direct conversations only; its unique index makes
// concurrent creations for one pair converge.
type conversationModel struct {
	ID           string             `gorm:"primaryKey;size:64"`
	IsGroup      bool               `gorm:"not null"`
	Name         *string            `gorm:"size:100"`
	DirectKey    *string            `gorm:"size:140;uniqueIndex"`
	CreatedAt    time.Time          `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    time.Time          `gorm:"not null;autoUpdateTime:false"`
	Participants []participantModel `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

func (conversationModel) TableName() string { return "conversations" }

type participantModel struct {
	ConversationID string    `gorm:"primaryKey;size:64"`
	UserID         string    `gorm:"primaryKey;size:64;index"`
	JoinedAt       time.Time `gorm:"not null"`
}

func (participantModel) TableName() string { return "participants" }

type messageModel struct {
	ID             string    `gorm:"primaryKey;size:64;index:idx_messages_conversation,priority:2"`
	ConversationID string    `gorm:"size:64;not null;index:idx_messages_conversation,priority:1"`
	SenderID       string    `gorm:"size:64;not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime:false"`
}

func (messageModel) TableName() string { return "messages" }

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:           domain.UserID(m.ID),
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func (m conversationModel) toDomain() domain.Conversation {
	participants := make([]domain.Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, domain.Participant{
			ConversationID: domain.ConversationID(p.ConversationID),
			UserID:         domain.UserID(p.UserID),
			JoinedAt:       p.JoinedAt.UTC(),
		})
	}
	return domain.Conversation{
		ID:           domain.ConversationID(m.ID),
		IsGroup:      m.IsGroup,
		Name:         m.Name,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		Participants: participants,
	}
}

func (m messageModel) toDomain() domain.Message {
	return domain.Message{
		ID:             domain.MessageID(m.ID),
		ConversationID: domain.ConversationID(m.ConversationID),
		SenderID:       domain.UserID(m.SenderID),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}
