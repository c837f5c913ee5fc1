package sink

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
	"log/slog"
)

// SessionSink buffers the events of one live connection until its writer
// goroutine sends them. Consume never blocks: a session that cannot keep
// up loses events instead of slowing down the others.
type SessionSink struct {
	log       *slog.Logger
	sessionID domain.SessionID
	events    chan event.DomainEvent
}

func NewSessionSink(log *slog.Logger, sessionID domain.SessionID, bufferSize int) *SessionSink {
	return &SessionSink{log: log, sessionID: sessionID, events: make(chan event.DomainEvent, bufferSize)}
}

func (s *SessionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.events <- e:
		return nil
	default:
		s.log.Warn("Session buffer full, event dropped", "session", s.sessionID, "kind", e.Kind(), "conversation", e.ConversationID())
		return errors.ErrSinkFull
	}
}

// Events is read by the connection writer.
func (s *SessionSink) Events() <-chan event.DomainEvent {
	return s.events
}
