//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
)

// IChatService drives the message lifecycle:
// non-existent -> active -> (edited)* -> active | deleted.
type IChatService interface {
	Send(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID, content string) (domain.MessagePayload, error)
	Edit(ctx context.Context, userID domain.UserID, messageID domain.MessageID, content string) (domain.MessagePayload, error)
	Delete(ctx context.Context, userID domain.UserID, messageID domain.MessageID) error
	ListMessages(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) ([]domain.MessagePayload, error)
	ListConversations(ctx context.Context, userID domain.UserID) ([]domain.ConversationSummary, error)
	SearchConversations(ctx context.Context, userID domain.UserID, query string) ([]domain.ConversationSummary, error)
	GetConversation(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) (domain.ConversationSummary, error)
}

// Censor masks forbidden words of a message content and reports them.
type Censor interface {
	Censor(content string) (string, []string)
}

type ChatService struct {
	log           *slog.Logger
	membership    IMembershipService
	users         repositories.IUserRepository
	conversations repositories.IConversationRepository
	messages      repositories.IMessageRepository
	broadcaster   contract.IBroadcaster
	sequencer     *runtime.Sequencer
	now           func() time.Time
	newID         func() string
	censor        Censor
}

func NewChatService(
	log *slog.Logger,
	membership IMembershipService,
	users repositories.IUserRepository,
	conversations repositories.IConversationRepository,
	messages repositories.IMessageRepository,
	broadcaster contract.IBroadcaster,
	sequencer *runtime.Sequencer,
) *ChatService {
	return &ChatService{
		log:           log,
		membership:    membership,
		users:         users,
		conversations: conversations,
		messages:      messages,
		broadcaster:   broadcaster,
		sequencer:     sequencer,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         newID,
	}
}

// Send persists content as given. Callers reject blank content.
func (s *ChatService) Send(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID, content string) (domain.MessagePayload, error) {
	if _, err := s.membership.EnsureParticipant(ctx, userID, conversationID); err != nil {
		return domain.MessagePayload{}, err
	}
	sender, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.MessagePayload{}, err
	}

	var payload domain.MessagePayload
	err = s.sequencer.Do(conversationID, func() error {
		message, err := s.messages.CreateMessage(ctx, domain.Message{
			ID:             domain.MessageID(s.newID()),
			ConversationID: conversationID,
			SenderID:       userID,
			Content:        s.censored(userID, conversationID, content),
			CreatedAt:      s.now(),
		})
		if err != nil {
			return err
		}
		payload = domain.NewMessagePayload(message, sender.AsSender())
		s.publish(ctx, event.MessageCreated{Payload: payload})
		return nil
	})
	return payload, err
}

func (s *ChatService) Edit(ctx context.Context, userID domain.UserID, messageID domain.MessageID, content string) (domain.MessagePayload, error) {
	if strings.TrimSpace(content) == "" {
		return domain.MessagePayload{}, errors.ErrEmptyContent
	}
	message, err := s.ownedMessage(ctx, userID, messageID)
	if err != nil {
		return domain.MessagePayload{}, err
	}
	sender, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.MessagePayload{}, err
	}

	var payload domain.MessagePayload
	err = s.sequencer.Do(message.ConversationID, func() error {
		updated, err := s.messages.UpdateMessageContent(ctx, messageID, s.censored(userID, message.ConversationID, content))
		if err != nil {
			return err
		}
		payload = domain.NewMessagePayload(updated, sender.AsSender())
		s.publish(ctx, event.MessageEdited{Payload: payload})
		return nil
	})
	return payload, err
}

func (s *ChatService) Delete(ctx context.Context, userID domain.UserID, messageID domain.MessageID) error {
	message, err := s.ownedMessage(ctx, userID, messageID)
	if err != nil {
		return err
	}
	return s.sequencer.Do(message.ConversationID, func() error {
		if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
			return err
		}
		s.publish(ctx, event.MessageDeleted{Marker: domain.DeleteMarker{ID: messageID, ConversationID: message.ConversationID}})
		return nil
	})
}

func (s *ChatService) ListMessages(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) ([]domain.MessagePayload, error) {
	if _, err := s.membership.EnsureParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	senders, err := s.users.GetUsersByIDs(ctx, lo.Map(messages, func(m domain.Message, _ int) domain.UserID { return m.SenderID }))
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(m domain.Message, _ int) domain.MessagePayload {
		return domain.NewMessagePayload(m, domain.Sender{ID: m.SenderID, Username: senders[m.SenderID].Username})
	}), nil
}

func (s *ChatService) ListConversations(ctx context.Context, userID domain.UserID) ([]domain.ConversationSummary, error) {
	details, err := s.conversations.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, userID, details)
}

// SearchConversations returns nothing for a blank query.
func (s *ChatService) SearchConversations(ctx context.Context, userID domain.UserID, query string) ([]domain.ConversationSummary, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return []domain.ConversationSummary{}, nil
	}
	details, err := s.conversations.SearchConversationsForUser(ctx, userID, term)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, userID, details)
}

func (s *ChatService) GetConversation(ctx context.Context, userID domain.UserID, conversationID domain.ConversationID) (domain.ConversationSummary, error) {
	conv, err := s.membership.EnsureParticipant(ctx, userID, conversationID)
	if err != nil {
		return domain.ConversationSummary{}, err
	}
	messages, err := s.messages.ListMessages(ctx, conversationID)
	if err != nil {
		return domain.ConversationSummary{}, err
	}
	details := domain.ConversationDetails{Conversation: conv}
	if last, ok := lo.Last(messages); ok {
		details.LastMessage = &last
	}
	summaries, err := s.summarize(ctx, userID, []domain.ConversationDetails{details})
	if err != nil {
		return domain.ConversationSummary{}, err
	}
	return summaries[0], nil
}

// ownedMessage loads a message and checks, in order, that it exists, that
// userID sent it, and that userID is still a participant.
func (s *ChatService) ownedMessage(ctx context.Context, userID domain.UserID, messageID domain.MessageID) (domain.Message, error) {
	message, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return domain.Message{}, err
	}
	if message.SenderID != userID {
		return domain.Message{}, errors.ErrNotSender
	}
	if _, err = s.membership.EnsureParticipant(ctx, userID, message.ConversationID); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// summarize resolves every user referenced by details in one lookup.
func (s *ChatService) summarize(ctx context.Context, viewer domain.UserID, details []domain.ConversationDetails) ([]domain.ConversationSummary, error) {
	var ids []domain.UserID
	for _, d := range details {
		ids = append(ids, d.ParticipantIDs()...)
		if d.LastMessage != nil {
			ids = append(ids, d.LastMessage.SenderID)
		}
	}
	users, err := s.users.GetUsersByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, err
	}
	summaries := lo.Map(details, func(d domain.ConversationDetails, _ int) domain.ConversationSummary {
		return domain.NewConversationSummary(viewer, d, users)
	})
	return summaries, nil
}

// WithCensor masks forbidden words of sent and edited messages.
func (s *ChatService) WithCensor(censor Censor) *ChatService {
	s.censor = censor
	return s
}

func (s *ChatService) censored(userID domain.UserID, conversationID domain.ConversationID, content string) string {
	if s.censor == nil {
		return content
	}
	censored, words := s.censor.Censor(content)
	if len(words) > 0 {
		s.log.Info("Message censored", "user", userID, "conversation", conversationID, "words", len(words))
	}
	return censored
}

// publish hands the event to the hub. A delivery failure never fails the
// write that produced it.
func (s *ChatService) publish(ctx context.Context, e event.DomainEvent) {
	if err := s.broadcaster.Broadcast(ctx, e); err != nil {
		s.log.Warn("Event not broadcast", "kind", e.Kind(), "conversation", e.ConversationID(), "error", err)
	}
}
