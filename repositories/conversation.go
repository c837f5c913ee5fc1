//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	goerrors "errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// IConversationRepository persists conversations and their participants.
// Every method creating or mutating rows does so atomically.
type IConversationRepository interface {
	GetConversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, error)
	// FindDirectConversation returns ErrConversationNotFound when the pair
	// has no direct conversation yet.
	FindDirectConversation(ctx context.Context, a, b domain.UserID) (domain.Conversation, error)
	// CreateDirectConversation returns the already existing conversation
	// when another one was created concurrently for the same pair.
	CreateDirectConversation(ctx context.Context, conv domain.Conversation, a, b domain.UserID) (domain.Conversation, error)
	CreateGroupConversation(ctx context.Context, conv domain.Conversation, participantIDs []domain.UserID) (domain.Conversation, error)
	// AddParticipants skips users that are already members.
	AddParticipants(ctx context.Context, id domain.ConversationID, userIDs []domain.UserID, at time.Time) (domain.Conversation, error)
	RemoveParticipant(ctx context.Context, id domain.ConversationID, userID domain.UserID, at time.Time) error
	RenameConversation(ctx context.Context, id domain.ConversationID, name string, at time.Time) (domain.Conversation, error)
	// ListConversationsForUser returns the user's conversations in store
	// order with participants and most recent message.
	ListConversationsForUser(ctx context.Context, userID domain.UserID) ([]domain.ConversationDetails, error)
	// SearchConversationsForUser matches the name case-insensitively and
	// orders by last update, most recent first.
	SearchConversationsForUser(ctx context.Context, userID domain.UserID, term string) ([]domain.ConversationDetails, error)
}

type ConversationRepository struct {
	db *badger.DB
}

func NewConversationRepository(db *badger.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

type conversationRecord struct {
	ID        string  `cbor:"id"`
	IsGroup   bool    `cbor:"is_group"`
	Name      *string `cbor:"name,omitempty"`
	CreatedAt int64   `cbor:"created_at"`
	UpdatedAt int64   `cbor:"updated_at"`
}

type participantRecord struct {
	JoinedAt int64 `cbor:"joined_at"`
}

func (r *ConversationRepository) GetConversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Conversation{}, err
	}
	var conv domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		conv, err = getConversation(txn, id)
		return err
	})
	return conv, err
}

func (r *ConversationRepository) FindDirectConversation(ctx context.Context, a, b domain.UserID) (domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Conversation{}, err
	}
	var conv domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		conv, err = findDirect(txn, a, b)
		return err
	})
	return conv, err
}

func (r *ConversationRepository) CreateDirectConversation(ctx context.Context, conv domain.Conversation, a, b domain.UserID) (domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Conversation{}, err
	}
	var created domain.Conversation
	err := update(r.db, func(txn *badger.Txn) error {
		existing, err := findDirect(txn, a, b)
		if err == nil {
			created = existing
			return nil
		}
		if !goerrors.Is(err, errors.ErrConversationNotFound) {
			return err
		}
		conv.IsGroup = false
		conv.Name = nil
		if err = txn.Set([]byte(directKey(a, b)), []byte(conv.ID)); err != nil {
			return err
		}
		created, err = insertConversation(txn, conv, []domain.UserID{a, b})
		return err
	})
	return created, err
}

func (r *ConversationRepository) CreateGroupConversation(ctx context.Context, conv domain.Conversation, participantIDs []domain.UserID) (domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Conversation{}, err
	}
	conv.IsGroup = true
	var created domain.Conversation
	err := update(r.db, func(txn *badger.Txn) error {
		var err error
		created, err = insertConversation(txn, conv, lo.Uniq(participantIDs))
		return err
	})
	return created, err
}

func (r *ConversationRepository) AddParticipants(ctx context.Context, id domain.ConversationID, userIDs []domain.UserID, at time.Time) (domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Conversation{}, err
	}
	var conv domain.Conversation
	err := update(r.db, func(txn *badger.Txn) error {
		record, err := getConversationRecord(txn, id)
		if err != nil {
			return err
		}
		added := 0
		for _, userID := range lo.Uniq(userIDs) {
			if _, err = txn.Get([]byte(partKey(id, userID))); err == nil {
				continue
			} else if !goerrors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err = insertParticipant(txn, id, userID, at); err != nil {
				return err
			}
			added++
		}
		if added > 0 {
			record.UpdatedAt = max(record.UpdatedAt, toNano(at))
			if err = setRecord(txn, convKey(id), record); err != nil {
				return err
			}
		}
		conv, err = loadConversation(txn, record)
		return err
	})
	return conv, err
}

func (r *ConversationRepository) RemoveParticipant(ctx context.Context, id domain.ConversationID, userID domain.UserID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		record, err := getConversationRecord(txn, id)
		if err != nil {
			return err
		}
		if _, err = txn.Get([]byte(partKey(id, userID))); goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotParticipant
		} else if err != nil {
			return err
		}
		if err = txn.Delete([]byte(partKey(id, userID))); err != nil {
			return err
		}
		if err = txn.Delete([]byte(memberKey(userID, id))); err != nil {
			return err
		}
		record.UpdatedAt = max(record.UpdatedAt, toNano(at))
		return setRecord(txn, convKey(id), record)
	})
}

func (r *ConversationRepository) RenameConversation(ctx context.Context, id domain.ConversationID, name string, at time.Time) (domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Conversation{}, err
	}
	var conv domain.Conversation
	err := update(r.db, func(txn *badger.Txn) error {
		record, err := getConversationRecord(txn, id)
		if err != nil {
			return err
		}
		record.Name = lo.ToPtr(name)
		record.UpdatedAt = max(record.UpdatedAt, toNano(at))
		if err = setRecord(txn, convKey(id), record); err != nil {
			return err
		}
		conv, err = loadConversation(txn, record)
		return err
	})
	return conv, err
}

func (r *ConversationRepository) ListConversationsForUser(ctx context.Context, userID domain.UserID) ([]domain.ConversationDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var details []domain.ConversationDetails
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		details, err = listForUser(txn, userID)
		return err
	})
	return details, err
}

func (r *ConversationRepository) SearchConversationsForUser(ctx context.Context, userID domain.UserID, term string) ([]domain.ConversationDetails, error) {
	all, err := r.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	matches := lo.Filter(all, func(d domain.ConversationDetails, _ int) bool {
		return d.MatchesName(term)
	})
	slices.SortStableFunc(matches, func(a, b domain.ConversationDetails) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return matches, nil
}

func listForUser(txn *badger.Txn, userID domain.UserID) ([]domain.ConversationDetails, error) {
	convIDs := scanKeys(txn, memberPrefixFor(userID))
	details := make([]domain.ConversationDetails, 0, len(convIDs))
	for _, rawID := range convIDs {
		id := domain.ConversationID(rawID)
		conv, err := getConversation(txn, id)
		if err != nil {
			return nil, err
		}
		last, err := lastMessage(txn, id)
		if err != nil {
			return nil, err
		}
		details = append(details, domain.ConversationDetails{Conversation: conv, LastMessage: last})
	}
	return details, nil
}

func findDirect(txn *badger.Txn, a, b domain.UserID) (domain.Conversation, error) {
	item, err := txn.Get([]byte(directKey(a, b)))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Conversation{}, errors.ErrConversationNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	id, err := item.ValueCopy(nil)
	if err != nil {
		return domain.Conversation{}, err
	}
	return getConversation(txn, domain.ConversationID(id))
}

func insertConversation(txn *badger.Txn, conv domain.Conversation, participantIDs []domain.UserID) (domain.Conversation, error) {
	record := conversationRecord{
		ID:        conv.ID.String(),
		IsGroup:   conv.IsGroup,
		Name:      conv.Name,
		CreatedAt: toNano(conv.CreatedAt),
		UpdatedAt: toNano(conv.UpdatedAt),
	}
	if err := setRecord(txn, convKey(conv.ID), record); err != nil {
		return domain.Conversation{}, err
	}
	for _, userID := range participantIDs {
		if err := insertParticipant(txn, conv.ID, userID, conv.CreatedAt); err != nil {
			return domain.Conversation{}, err
		}
	}
	return loadConversation(txn, record)
}

func insertParticipant(txn *badger.Txn, convID domain.ConversationID, userID domain.UserID, at time.Time) error {
	if err := setRecord(txn, partKey(convID, userID), participantRecord{JoinedAt: toNano(at)}); err != nil {
		return err
	}
	return txn.Set([]byte(memberKey(userID, convID)), nil)
}

func getConversationRecord(txn *badger.Txn, id domain.ConversationID) (conversationRecord, error) {
	var record conversationRecord
	err := getRecord(txn, convKey(id), &record)
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return record, errors.ErrConversationNotFound
	}
	return record, err
}

func getConversation(txn *badger.Txn, id domain.ConversationID) (domain.Conversation, error) {
	record, err := getConversationRecord(txn, id)
	if err != nil {
		return domain.Conversation{}, err
	}
	return loadConversation(txn, record)
}

// loadConversation resolves the participant rows of a record, in user id order.
func loadConversation(txn *badger.Txn, record conversationRecord) (domain.Conversation, error) {
	id := domain.ConversationID(record.ID)
	prefix := partPrefixFor(id)

	it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 16, Prefix: []byte(prefix)})
	defer it.Close()

	var participants []domain.Participant
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		item := it.Item()
		var p participantRecord
		if err := item.Value(func(val []byte) error { return unmarshal(val, &p) }); err != nil {
			return domain.Conversation{}, err
		}
		participants = append(participants, domain.Participant{
			ConversationID: id,
			UserID:         domain.UserID(item.Key()[len(prefix):]),
			JoinedAt:       fromNano(p.JoinedAt),
		})
	}

	return domain.Conversation{
		ID:           id,
		IsGroup:      record.IsGroup,
		Name:         record.Name,
		CreatedAt:    fromNano(record.CreatedAt),
		UpdatedAt:    fromNano(record.UpdatedAt),
		Participants: participants,
	}, nil
}
