package workers

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"context"
	"log/slog"
	"time"
)

// EventFanout delivers each hub event to the sinks joined to its
// conversation at delivery time.
//
// Delivery is best-effort and at-most-once: no retries, no backlog for
// sessions joining later. A single EventFanout consumes the hub queue, so
// events of one conversation reach each sink in the order they were
// broadcast.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.DomainEvent
	registry    contract.IRegistry
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent, registry contract.IRegistry, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, events: events, registry: registry, sinkTimeout: sinkTimeout}
}

func (w EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout One sink for each joined session
func (w EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := w.registry.GetSinksForConversation(evt.ConversationID())
	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Debug("Event not delivered to session", "kind", evt.Kind(), "conversation", evt.ConversationID(), "error", err)
		}
		cancel()
	}
}
