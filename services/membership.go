//go:generate go run go.uber.org/mock/mockgen -source=membership.go -destination=../mocks/mock_membership_service.go -package=mocks
package services

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/repositories"
	"context"
	goerrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// IMembershipService decides who belongs to which conversation.
// EnsureParticipant is the authorization gate of every conversation read
// and write.
type IMembershipService interface {
	EnsureParticipant(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) (domain.Conversation, error)
	CreateDirect(ctx context.Context, userID, otherUserID domain.UserID) (domain.Conversation, error)
	CreateGroup(ctx context.Context, userID domain.UserID, name *string, participantIDs []domain.UserID) (domain.Conversation, error)
	AddParticipants(ctx context.Context, requesterID domain.UserID, conversationID domain.ConversationID, participantIDs []domain.UserID) (domain.Conversation, error)
	Leave(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) error
	Rename(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID, name string) (domain.Conversation, error)
}

type MembershipService struct {
	log           *slog.Logger
	users         repositories.IUserRepository
	conversations repositories.IConversationRepository
	now           func() time.Time
	newID         func() string
}

func NewMembershipService(log *slog.Logger, users repositories.IUserRepository, conversations repositories.IConversationRepository) *MembershipService {
	return &MembershipService{
		log:           log,
		users:         users,
		conversations: conversations,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         newID,
	}
}

func (s *MembershipService) EnsureParticipant(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) (domain.Conversation, error) {
	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !conv.HasParticipant(userID) {
		return domain.Conversation{}, errors.ErrNotParticipant
	}
	return conv, nil
}

// CreateDirect returns the pair's conversation, creating it on first use.
func (s *MembershipService) CreateDirect(ctx context.Context, userID, otherUserID domain.UserID) (domain.Conversation, error) {
	if userID == otherUserID {
		return domain.Conversation{}, errors.ErrSelfConversation
	}
	if _, err := s.users.GetUserByID(ctx, otherUserID); err != nil {
		if goerrors.Is(err, errors.ErrUserNotFound) {
			return domain.Conversation{}, errors.ErrOtherUserNotFound
		}
		return domain.Conversation{}, err
	}

	existing, err := s.conversations.FindDirectConversation(ctx, userID, otherUserID)
	if err == nil {
		return existing, nil
	}
	if !goerrors.Is(err, errors.ErrConversationNotFound) {
		return domain.Conversation{}, err
	}

	now := s.now()
	conv, err := s.conversations.CreateDirectConversation(ctx, domain.Conversation{
		ID:        domain.ConversationID(s.newID()),
		CreatedAt: now,
		UpdatedAt: now,
	}, userID, otherUserID)
	if err != nil {
		return domain.Conversation{}, err
	}
	s.log.Debug("Direct conversation ready", "conversation", conv.ID, "users", []domain.UserID{userID, otherUserID})
	return conv, nil
}

// CreateGroup always makes the creator a participant. Every other id must
// reference an existing user.
func (s *MembershipService) CreateGroup(ctx context.Context, userID domain.UserID, name *string, participantIDs []domain.UserID) (domain.Conversation, error) {
	ids := domain.UniqueParticipants(userID, participantIDs)
	if err := s.ensureUsersExist(ctx, lo.Without(ids, userID)); err != nil {
		return domain.Conversation{}, err
	}

	now := s.now()
	conv, err := s.conversations.CreateGroupConversation(ctx, domain.Conversation{
		ID:        domain.ConversationID(s.newID()),
		IsGroup:   true,
		Name:      normalizeName(name),
		CreatedAt: now,
		UpdatedAt: now,
	}, ids)
	if err != nil {
		return domain.Conversation{}, err
	}
	s.log.Debug("Group conversation created", "conversation", conv.ID, "participants", len(ids))
	return conv, nil
}

func (s *MembershipService) AddParticipants(ctx context.Context, requesterID domain.UserID, conversationID domain.ConversationID, participantIDs []domain.UserID) (domain.Conversation, error) {
	conv, err := s.ensureGroupMember(ctx, requesterID, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}

	toAdd := lo.Filter(lo.Uniq(participantIDs), func(id domain.UserID, _ int) bool {
		return !conv.HasParticipant(id)
	})
	if len(toAdd) == 0 {
		return conv, nil
	}
	if err = s.ensureUsersExist(ctx, toAdd); err != nil {
		return domain.Conversation{}, err
	}
	return s.conversations.AddParticipants(ctx, conversationID, toAdd, s.now())
}

func (s *MembershipService) Leave(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) error {
	if _, err := s.ensureGroupMember(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.conversations.RemoveParticipant(ctx, conversationID, userID, s.now())
}

func (s *MembershipService) Rename(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID, name string) (domain.Conversation, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.Conversation{}, errors.ErrEmptyName
	}
	if _, err := s.ensureGroupMember(ctx, userID, conversationID); err != nil {
		return domain.Conversation{}, err
	}
	return s.conversations.RenameConversation(ctx, conversationID, trimmed, s.now())
}

// ensureGroupMember checks existence, then kind, then membership.
func (s *MembershipService) ensureGroupMember(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) (domain.Conversation, error) {
	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !conv.IsGroup {
		return domain.Conversation{}, errors.ErrNotGroup
	}
	if !conv.HasParticipant(userID) {
		return domain.Conversation{}, errors.ErrNotParticipant
	}
	return conv, nil
}

func (s *MembershipService) ensureUsersExist(ctx context.Context, ids []domain.UserID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing, ok := lo.Find(ids, func(id domain.UserID) bool { _, ok := found[id]; return !ok }); ok {
		return errors.Wrap(errors.KindNotFound, "user not found: "+missing.String(), errors.ErrUserNotFound)
	}
	return nil
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// newID returns a time ordered UUIDv7, so store order is creation order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
