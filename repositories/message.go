//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	// CreateMessage also bumps the conversation's update time.
	CreateMessage(ctx context.Context, message domain.Message) (domain.Message, error)
	GetMessage(ctx context.Context, id domain.MessageID) (domain.Message, error)
	UpdateMessageContent(ctx context.Context, id domain.MessageID, content string) (domain.Message, error)
	DeleteMessage(ctx context.Context, id domain.MessageID) error
	// ListMessages returns the conversation's messages, oldest first.
	ListMessages(ctx context.Context, conversationID domain.ConversationID) ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

// NewMessageRepository builds the repository. A non-nil limitMessages caps
// ListMessages to the most recent messages.
func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) *MessageRepository {
	return &MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type messageRecord struct {
	ID             string `cbor:"id"`
	ConversationID string `cbor:"conversation_id"`
	SenderID       string `cbor:"sender_id"`
	Content        string `cbor:"content"`
	CreatedAt      int64  `cbor:"created_at"`
}

// CreateMessage stores the message, its time ordered index entry
// "convmsg:{conversation}:{timestamp_padded}:{id}" and the conversation's new
// update time in one transaction.
func (m *MessageRepository) CreateMessage(ctx context.Context, message domain.Message) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	record := fromMessage(message)
	err := update(m.db, func(txn *badger.Txn) error {
		conv, err := getConversationRecord(txn, message.ConversationID)
		if err != nil {
			return err
		}
		if err = setRecord(txn, msgKey(message.ID), record); err != nil {
			return err
		}
		if err = txn.Set([]byte(convMsgKey(message.ConversationID, record.CreatedAt, message.ID)), []byte(message.ID)); err != nil {
			return err
		}
		conv.UpdatedAt = max(conv.UpdatedAt, record.CreatedAt)
		return setRecord(txn, convKey(message.ConversationID), conv)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(record), nil
}

func (m *MessageRepository) GetMessage(ctx context.Context, id domain.MessageID) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		record, err := getMessageRecord(txn, id)
		message = toMessage(record)
		return err
	})
	return message, err
}

func (m *MessageRepository) UpdateMessageContent(ctx context.Context, id domain.MessageID, content string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	var record messageRecord
	err := update(m.db, func(txn *badger.Txn) error {
		var err error
		record, err = getMessageRecord(txn, id)
		if err != nil {
			return err
		}
		record.Content = content
		return setRecord(txn, msgKey(id), record)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(record), nil
}

func (m *MessageRepository) DeleteMessage(ctx context.Context, id domain.MessageID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return update(m.db, func(txn *badger.Txn) error {
		record, err := getMessageRecord(txn, id)
		if err != nil {
			return err
		}
		if err = txn.Delete([]byte(convMsgKey(domain.ConversationID(record.ConversationID), record.CreatedAt, id))); err != nil {
			return err
		}
		return txn.Delete([]byte(msgKey(id)))
	})
}

// ListMessages walks the time ordered index backwards from the newest
// entry, stops at limitMessages, and returns the result oldest first.
func (m *MessageRepository) ListMessages(ctx context.Context, conversationID domain.ConversationID) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		ids := newestMessageIDs(txn, conversationID, m.limitMessages)
		if m.limitMessages != nil && len(ids) == *m.limitMessages {
			m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
		}
		messages = make([]domain.Message, len(ids))
		for i, id := range ids {
			record, err := getMessageRecord(txn, id)
			if err != nil {
				return err
			}
			// ids are newest first
			messages[len(ids)-1-i] = toMessage(record)
		}
		return nil
	})
	return messages, err
}

func lastMessage(txn *badger.Txn, conversationID domain.ConversationID) (*domain.Message, error) {
	ids := newestMessageIDs(txn, conversationID, lo.ToPtr(1))
	if len(ids) == 0 {
		return nil, nil
	}
	record, err := getMessageRecord(txn, ids[0])
	if err != nil {
		return nil, err
	}
	message := toMessage(record)
	return &message, nil
}

// newestMessageIDs returns message ids newest first, at most limit when set.
func newestMessageIDs(txn *badger.Txn, conversationID domain.ConversationID, limit *int) []domain.MessageID {
	prefix := []byte(convMsgPrefixFor(conversationID))
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	options.Prefix = prefix
	it := txn.NewIterator(options)
	defer it.Close()

	// Reverse iteration seeks to the greatest key <= seek, 0xff sorts
	// after every digit.
	seekKey := append(append([]byte{}, prefix...), 0xff)

	var ids []domain.MessageID
	for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
		if limit != nil && len(ids) == *limit {
			break
		}
		value, err := it.Item().ValueCopy(nil)
		if err != nil {
			continue
		}
		ids = append(ids, domain.MessageID(value))
	}
	return ids
}

func getMessageRecord(txn *badger.Txn, id domain.MessageID) (messageRecord, error) {
	var record messageRecord
	err := getRecord(txn, msgKey(id), &record)
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return record, errors.ErrMessageNotFound
	}
	return record, err
}

func fromMessage(message domain.Message) messageRecord {
	return messageRecord{
		ID:             message.ID.String(),
		ConversationID: message.ConversationID.String(),
		SenderID:       message.SenderID.String(),
		Content:        message.Content,
		CreatedAt:      toNano(message.CreatedAt),
	}
}

func toMessage(record messageRecord) domain.Message {
	return domain.Message{
		ID:             domain.MessageID(record.ID),
		ConversationID: domain.ConversationID(record.ConversationID),
		SenderID:       domain.UserID(record.SenderID),
		Content:        record.Content,
		CreatedAt:      fromNano(record.CreatedAt),
	}
}
