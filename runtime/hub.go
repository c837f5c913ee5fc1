// Package runtime owns the live side of the chat: sessions, delivery groups
// and the fan-out of committed writes. It holds no business rule.
package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Hub is the delivery hub. It is created once per process, started with
// Start and torn down with Stop, and injected wherever broadcast is needed.
type Hub struct {
	log         *slog.Logger
	verifier    contract.IdentityVerifier
	registry    *Registry
	supervisor  contract.ISupervisor
	events      chan event.DomainEvent
	sinkTimeout time.Duration

	stopOnce sync.Once
	stopped  chan struct{}
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewHub(log *slog.Logger, verifier contract.IdentityVerifier, registry *Registry,
	supervisor contract.ISupervisor, bufferSize int, sinkTimeout time.Duration) *Hub {
	return &Hub{
		log:         log,
		verifier:    verifier,
		registry:    registry,
		supervisor:  supervisor,
		events:      make(chan event.DomainEvent, bufferSize),
		sinkTimeout: sinkTimeout,
		stopped:     make(chan struct{}),
	}
}

// Start runs the fan-out worker under the supervisor until ctx is done or
// Stop is called.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.done = make(chan struct{})

	h.supervisor.Add(workers.NewEventFanout(h.log, h.events, h.registry, h.sinkTimeout))
	go func() {
		defer close(h.done)
		h.supervisor.Run(runCtx)
	}()
	h.log.Info("Delivery hub started", "buffer", cap(h.events))
}

// Stop refuses further broadcasts and waits for the fan-out worker.
// Events still queued are dropped.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopped) })

	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	h.log.Info("Delivery hub stopped", "dropped", len(h.events))
}

// Authenticate is the only gate before a session is admitted.
func (h *Hub) Authenticate(token string) (domain.UserID, error) {
	return h.verifier.Verify(token)
}

func (h *Hub) Connect(sessionID domain.SessionID, userID domain.UserID, sink contract.EventSink) {
	h.registry.Register(sessionID, userID, sink)
	h.log.Debug("Session connected", "session", sessionID, "user", userID)
}

// Join subscribes the session to the conversation's delivery group.
// It returns false for an unknown session.
func (h *Hub) Join(sessionID domain.SessionID, conversationID domain.ConversationID) bool {
	ok := h.registry.Join(sessionID, conversationID)
	h.log.Debug("Session join", "session", sessionID, "conversation", conversationID, "joined", ok)
	return ok
}

// Disconnect is idempotent.
func (h *Hub) Disconnect(sessionID domain.SessionID) {
	h.registry.Disconnect(sessionID)
	h.log.Debug("Session disconnected", "session", sessionID)
}

// Broadcast queues e for delivery. It waits only while the queue is full,
// and fails once the hub is stopped or ctx is done.
func (h *Hub) Broadcast(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-h.stopped:
		return errors.ErrHubStopped
	default:
	}
	select {
	case h.events <- e:
		return nil
	case <-h.stopped:
		return errors.ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queue exposes the broadcast queue for capacity sampling.
func (h *Hub) Queue() workers.NamedChannel {
	return workers.NamedChannel{Name: "hub_events", Channel: h.events}
}

type HubStats struct {
	RegistryStats
	QueueLength   int `json:"queueLength"`
	QueueCapacity int `json:"queueCapacity"`
}

func (h *Hub) Stats() HubStats {
	return HubStats{RegistryStats: h.registry.Stats(), QueueLength: len(h.events), QueueCapacity: cap(h.events)}
}
