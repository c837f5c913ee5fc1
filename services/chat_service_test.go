package services

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// recorder keeps every broadcast event in order.
type recorder struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (r *recorder) Broadcast(_ context.Context, e event.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) kinds() []event.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Map(r.events, func(e event.DomainEvent, _ int) event.Kind { return e.Kind() })
}

type chatFixture struct {
	chat       *ChatService
	membership *MembershipService
	events     *recorder
	users      map[string]domain.User
}

func newChatFixture(t *testing.T, usernames ...string) chatFixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	userRepository := repositories.NewUserRepository(db)
	conversationRepository := repositories.NewConversationRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, nil)

	users := make(map[string]domain.User)
	for _, name := range usernames {
		user, err := userRepository.CreateUser(context.Background(), domain.User{
			ID: domain.UserID("id-" + name), Username: name, Email: name + "@chat.test", CreatedAt: fixedNow,
		})
		require.NoError(t, err)
		users[name] = user
	}

	events := &recorder{}
	membership := NewMembershipService(log, userRepository, conversationRepository)
	chat := NewChatService(log, membership, userRepository, conversationRepository, messageRepository, events, runtime.NewSequencer(8))

	// Strictly increasing clock so message order is deterministic.
	tick := 0
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return fixedNow.Add(time.Duration(tick) * time.Millisecond)
	}
	membership.now = clock
	chat.now = clock
	return chatFixture{chat: chat, membership: membership, events: events, users: users}
}

func (f chatFixture) id(name string) domain.UserID { return f.users[name].ID }

func TestChatService_Scenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "u1", "u2")

	// Given a direct conversation between u1 and u2
	conv, err := f.membership.CreateDirect(ctx, f.id("u1"), f.id("u2"))
	req.NoError(err)
	again, err := f.membership.CreateDirect(ctx, f.id("u2"), f.id("u1"))
	req.NoError(err)
	req.Equal(conv.ID, again.ID)

	// When u1 sends "hi"
	sent, err := f.chat.Send(ctx, f.id("u1"), conv.ID, "hi")
	req.NoError(err)
	req.Equal("hi", sent.Content)
	req.Equal(domain.Sender{ID: f.id("u1"), Username: "u1"}, sent.Sender)
	req.Equal(conv.ID, sent.ConversationID)

	// Then u2 cannot edit it
	_, err = f.chat.Edit(ctx, f.id("u2"), sent.ID, "hacked")
	req.ErrorIs(err, errors.ErrNotSender)

	// When u1 edits then deletes it
	edited, err := f.chat.Edit(ctx, f.id("u1"), sent.ID, "hello")
	req.NoError(err)
	req.Equal("hello", edited.Content)
	req.Equal(sent.CreatedAt, edited.CreatedAt)
	req.NoError(f.chat.Delete(ctx, f.id("u1"), sent.ID))

	// Then the conversation is empty
	messages, err := f.chat.ListMessages(ctx, f.id("u2"), conv.ID)
	req.NoError(err)
	req.Empty(messages)

	// And the events were emitted in commit order
	req.Equal([]event.Kind{event.KindNewMessage, event.KindEditedMessage, event.KindDeletedMessage}, f.events.kinds())
	req.Equal("hi", f.events.events[0].(event.MessageCreated).Payload.Content)
	req.Equal("hello", f.events.events[1].(event.MessageEdited).Payload.Content)
	req.Equal(domain.DeleteMarker{ID: sent.ID, ConversationID: conv.ID}, f.events.events[2].(event.MessageDeleted).Marker)
}

func TestChatService_NonMemberIsForbidden(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "alice", "bob", "mallory")

	conv, err := f.membership.CreateDirect(ctx, f.id("alice"), f.id("bob"))
	req.NoError(err)

	_, err = f.chat.Send(ctx, f.id("mallory"), conv.ID, "hey")
	req.ErrorIs(err, errors.ErrNotParticipant)
	_, err = f.chat.ListMessages(ctx, f.id("mallory"), conv.ID)
	req.ErrorIs(err, errors.ErrNotParticipant)
	_, err = f.chat.GetConversation(ctx, f.id("mallory"), conv.ID)
	req.ErrorIs(err, errors.ErrNotParticipant)
	req.Empty(f.events.kinds())

	_, err = f.chat.Send(ctx, f.id("alice"), "missing", "hey")
	req.ErrorIs(err, errors.ErrConversationNotFound)
}

func TestChatService_EditAfterLeaveIsForbidden(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "alice", "bob")

	conv, err := f.membership.CreateGroup(ctx, f.id("alice"), lo.ToPtr("Team"), []domain.UserID{f.id("bob")})
	req.NoError(err)
	sent, err := f.chat.Send(ctx, f.id("bob"), conv.ID, "bye soon")
	req.NoError(err)

	// When bob leaves the group
	req.NoError(f.membership.Leave(ctx, f.id("bob"), conv.ID))

	// Then he can neither edit nor delete his message
	_, err = f.chat.Edit(ctx, f.id("bob"), sent.ID, "changed")
	req.ErrorIs(err, errors.ErrNotParticipant)
	req.ErrorIs(f.chat.Delete(ctx, f.id("bob"), sent.ID), errors.ErrNotParticipant)

	// And alice, still a member, cannot delete it either
	req.ErrorIs(f.chat.Delete(ctx, f.id("alice"), sent.ID), errors.ErrNotSender)

	messages, err := f.chat.ListMessages(ctx, f.id("alice"), conv.ID)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("bye soon", messages[0].Content)
}

func TestChatService_EditValidation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "alice")

	_, err := f.chat.Edit(ctx, f.id("alice"), "m-1", "   ")
	req.ErrorIs(err, errors.ErrEmptyContent)

	_, err = f.chat.Edit(ctx, f.id("alice"), "m-404", "text")
	req.ErrorIs(err, errors.ErrMessageNotFound)
	req.ErrorIs(f.chat.Delete(ctx, f.id("alice"), "m-404"), errors.ErrMessageNotFound)
}

func TestChatService_SendKeepsContentAsGiven(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "alice")

	conv, err := f.membership.CreateGroup(ctx, f.id("alice"), nil, nil)
	req.NoError(err)

	sent, err := f.chat.Send(ctx, f.id("alice"), conv.ID, "  spaced  ")
	req.NoError(err)
	req.Equal("  spaced  ", sent.Content)

	empty, err := f.chat.Send(ctx, f.id("alice"), conv.ID, "")
	req.NoError(err)
	req.Equal("", empty.Content)
}

func TestChatService_ListMessagesOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "alice", "bob")

	conv, err := f.membership.CreateDirect(ctx, f.id("alice"), f.id("bob"))
	req.NoError(err)
	for i := range 5 {
		author := lo.Ternary(i%2 == 0, "alice", "bob")
		_, err = f.chat.Send(ctx, f.id(author), conv.ID, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	messages, err := f.chat.ListMessages(ctx, f.id("bob"), conv.ID)
	req.NoError(err)
	req.Equal(
		[]string{"message 0", "message 1", "message 2", "message 3", "message 4"},
		lo.Map(messages, func(m domain.MessagePayload, _ int) string { return m.Content }),
	)
	req.Equal("bob", messages[1].Sender.Username)
}

func TestChatService_ListAndSearchConversations(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "alice", "bob", "carol")

	dm, err := f.membership.CreateDirect(ctx, f.id("alice"), f.id("bob"))
	req.NoError(err)
	weekend, err := f.membership.CreateGroup(ctx, f.id("alice"), lo.ToPtr("Weekend plans"), []domain.UserID{f.id("carol")})
	req.NoError(err)
	work, err := f.membership.CreateGroup(ctx, f.id("carol"), lo.ToPtr("Work PLANS"), []domain.UserID{f.id("alice")})
	req.NoError(err)
	_, err = f.chat.Send(ctx, f.id("bob"), dm.ID, "ping")
	req.NoError(err)
	// weekend becomes the most recently updated conversation
	_, err = f.chat.Send(ctx, f.id("carol"), weekend.ID, "saturday?")
	req.NoError(err)

	// Plain listing follows creation order and carries titles
	summaries, err := f.chat.ListConversations(ctx, f.id("alice"))
	req.NoError(err)
	req.Equal([]domain.ConversationID{dm.ID, weekend.ID, work.ID}, lo.Map(summaries, func(s domain.ConversationSummary, _ int) domain.ConversationID { return s.ID }))
	req.Equal("bob", summaries[0].Title)
	req.Equal("ping", summaries[0].LastMessage.Content)
	req.Equal("bob", summaries[0].LastMessage.Sender.Username)
	req.Equal("Weekend plans", summaries[1].Title)
	req.Nil(summaries[2].LastMessage)

	// Search is case-insensitive and most recently updated first
	found, err := f.chat.SearchConversations(ctx, f.id("alice"), "  plans ")
	req.NoError(err)
	req.Equal([]domain.ConversationID{weekend.ID, work.ID}, lo.Map(found, func(s domain.ConversationSummary, _ int) domain.ConversationID { return s.ID }))

	for _, query := range []string{"", "   "} {
		found, err = f.chat.SearchConversations(ctx, f.id("alice"), query)
		req.NoError(err)
		req.NotNil(found)
		req.Empty(found)
	}

	// bob only sees the direct conversation
	found, err = f.chat.SearchConversations(ctx, f.id("bob"), "plans")
	req.NoError(err)
	req.Empty(found)

	summary, err := f.chat.GetConversation(ctx, f.id("carol"), weekend.ID)
	req.NoError(err)
	req.Equal("saturday?", summary.LastMessage.Content)
	req.Len(summary.Participants, 2)
}

func TestChatService_BroadcastFailureDoesNotFailWrite(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	f := newChatFixture(t, "alice")

	broadcaster := mocks.NewMockIBroadcaster(ctrl)
	broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(errors.ErrHubStopped).Times(1)
	f.chat.broadcaster = broadcaster

	conv, err := f.membership.CreateGroup(ctx, f.id("alice"), nil, nil)
	req.NoError(err)

	sent, err := f.chat.Send(ctx, f.id("alice"), conv.ID, "still stored")
	req.NoError(err)

	messages, err := f.chat.ListMessages(ctx, f.id("alice"), conv.ID)
	req.NoError(err)
	req.Equal([]domain.MessageID{sent.ID}, lo.Map(messages, func(m domain.MessagePayload, _ int) domain.MessageID { return m.ID }))
}

func TestChatService_ConcurrentSendsKeepCommitOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "alice", "bob")

	conv, err := f.membership.CreateDirect(ctx, f.id("alice"), f.id("bob"))
	req.NoError(err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = f.chat.Send(ctx, f.id(lo.Ternary(i%2 == 0, "alice", "bob")), conv.ID, fmt.Sprintf("%d", i))
		}(i)
	}
	wg.Wait()

	// Broadcast order equals store order
	messages, err := f.chat.ListMessages(ctx, f.id("alice"), conv.ID)
	req.NoError(err)
	req.Len(messages, 20)
	broadcast := lo.Map(f.events.events, func(e event.DomainEvent, _ int) domain.MessageID {
		return e.(event.MessageCreated).Payload.ID
	})
	req.Equal(lo.Map(messages, func(m domain.MessagePayload, _ int) domain.MessageID { return m.ID }), broadcast)
}

func TestChatService_Censors_Sent_And_Edited_Content(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatFixture(t, "u1", "u2")
	ctrl := gomock.NewController(t)
	censor := mocks.NewMockCensor(ctrl)
	f.chat.WithCensor(censor)
	conv, err := f.membership.CreateDirect(ctx, f.id("u1"), f.id("u2"))
	req.NoError(err)

	// Given a censor masking "badger"
	gomock.InOrder(
		censor.EXPECT().Censor("the badger").Return("the ******", []string{"badger"}),
		censor.EXPECT().Censor("a fox").Return("a fox", nil),
	)

	// When a message is sent then edited
	sent, err := f.chat.Send(ctx, f.id("u1"), conv.ID, "the badger")
	req.NoError(err)
	edited, err := f.chat.Edit(ctx, f.id("u1"), sent.ID, "a fox")
	req.NoError(err)

	// Then the stored and broadcast content is the censored one
	req.Equal("the ******", sent.Content)
	req.Equal("a fox", edited.Content)
	history, err := f.chat.ListMessages(ctx, f.id("u2"), conv.ID)
	req.NoError(err)
	req.Equal("a fox", history[0].Content)
	req.Equal("the ******", f.events.events[0].(event.MessageCreated).Payload.Content)
}
