package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/runtime/workers"
	"chat-hub/sink"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newHub(t *testing.T, verifier *mocks.MockIdentityVerifier) *Hub {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	hub := NewHub(log, verifier, NewRegistry(), workers.NewSupervisor(log, 10*time.Millisecond), 16, 100*time.Millisecond)
	hub.Start(context.Background())
	t.Cleanup(hub.Stop)
	return hub
}

func receive(t *testing.T, s *sink.SessionSink) event.DomainEvent {
	t.Helper()
	select {
	case e := <-s.Events():
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return nil
	}
}

func requireSilent(t *testing.T, s *sink.SessionSink) {
	t.Helper()
	select {
	case e := <-s.Events():
		t.Fatalf("unexpected event %s", e.Kind())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Authenticate(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockIdentityVerifier(ctrl)
	hub := newHub(t, verifier)

	verifier.EXPECT().Verify("good").Return(domain.UserID("alice"), nil)
	verifier.EXPECT().Verify("bad").Return(domain.UserID(""), errors.ErrInvalidToken)

	userID, err := hub.Authenticate("good")
	req.NoError(err)
	req.Equal(domain.UserID("alice"), userID)

	_, err = hub.Authenticate("bad")
	req.Equal(errors.KindUnauthenticated, errors.KindOf(err))
}

func TestHub_Delivers_To_Joined_Sessions_Only(t *testing.T) {
	req := require.New(t)
	hub := newHub(t, nil)
	log := slog.Default()

	alice := sink.NewSessionSink(log, "s-alice", 8)
	bob := sink.NewSessionSink(log, "s-bob", 8)
	carol := sink.NewSessionSink(log, "s-carol", 8)
	hub.Connect("s-alice", "alice", alice)
	hub.Connect("s-bob", "bob", bob)
	hub.Connect("s-carol", "carol", carol)

	// Given alice and bob joined c-1, carol joined another conversation
	req.True(hub.Join("s-alice", "c-1"))
	req.True(hub.Join("s-bob", "c-1"))
	req.True(hub.Join("s-carol", "c-2"))
	req.False(hub.Join("s-ghost", "c-1"))

	payload := domain.MessagePayload{ID: "m-1", ConversationID: "c-1", Content: "hi"}
	req.NoError(hub.Broadcast(context.Background(), event.MessageCreated{Payload: payload}))

	// Then both members of c-1 receive it
	req.Equal(event.DomainEvent(event.MessageCreated{Payload: payload}), receive(t, alice))
	req.Equal(event.DomainEvent(event.MessageCreated{Payload: payload}), receive(t, bob))
	requireSilent(t, carol)

	// When bob disconnects, twice
	hub.Disconnect("s-bob")
	hub.Disconnect("s-bob")
	req.NoError(hub.Broadcast(context.Background(), event.MessageDeleted{Marker: domain.DeleteMarker{ID: "m-1", ConversationID: "c-1"}}))

	// Then only alice receives the delete
	req.Equal(event.KindDeletedMessage, receive(t, alice).Kind())
	requireSilent(t, bob)
	req.Equal(HubStats{RegistryStats: RegistryStats{Sessions: 2, Users: 2, Conversations: 2}, QueueCapacity: 16}, hub.Stats())
}

func TestHub_No_Backlog_For_Late_Joiners(t *testing.T) {
	req := require.New(t)
	hub := newHub(t, nil)
	early := sink.NewSessionSink(slog.Default(), "s-early", 8)
	late := sink.NewSessionSink(slog.Default(), "s-late", 8)
	hub.Connect("s-early", "alice", early)
	hub.Connect("s-late", "bob", late)
	hub.Join("s-early", "c-1")

	req.NoError(hub.Broadcast(context.Background(), event.MessageCreated{Payload: domain.MessagePayload{ID: "m-1", ConversationID: "c-1"}}))
	receive(t, early)

	// When bob joins after the broadcast
	hub.Join("s-late", "c-1")

	// Then he never gets the earlier event
	requireSilent(t, late)
}

func TestHub_Preserves_Order_Per_Conversation(t *testing.T) {
	req := require.New(t)
	hub := newHub(t, nil)
	s := sink.NewSessionSink(slog.Default(), "s-1", 64)
	hub.Connect("s-1", "alice", s)
	hub.Join("s-1", "c-1")

	for i := range 30 {
		id := domain.MessageID(rune('A' + i))
		req.NoError(hub.Broadcast(context.Background(), event.MessageCreated{Payload: domain.MessagePayload{ID: id, ConversationID: "c-1"}}))
	}
	for i := range 30 {
		e := receive(t, s).(event.MessageCreated)
		req.Equal(domain.MessageID(rune('A'+i)), e.Payload.ID)
	}
}

func TestHub_Broadcast_After_Stop(t *testing.T) {
	req := require.New(t)
	hub := newHub(t, nil)

	hub.Stop()
	hub.Stop()

	err := hub.Broadcast(context.Background(), event.MessageCreated{})
	req.ErrorIs(err, errors.ErrHubStopped)
}

func TestHub_Broadcast_Waits_While_Full(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	// Not started: nothing drains the queue
	hub := NewHub(log, nil, NewRegistry(), workers.NewSupervisor(log, 0), 1, time.Second)

	req.NoError(hub.Broadcast(context.Background(), event.MessageCreated{}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	req.ErrorIs(hub.Broadcast(ctx, event.MessageCreated{}), context.DeadlineExceeded)
}
