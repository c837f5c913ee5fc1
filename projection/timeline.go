// Package projection builds local timelines from observed events.
// Handles ordering, deduplication, and projections.
// Does not emit events or interact with UI directly.
package projection

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"slices"
	"sync"
)

// Timeline holds the messages of every observed conversation, oldest first.
type Timeline struct {
	mu            sync.Mutex
	conversations map[domain.ConversationID][]domain.MessagePayload
}

func NewTimeline() *Timeline {
	return &Timeline{conversations: make(map[domain.ConversationID][]domain.MessagePayload)}
}

// Seed replaces the known history of a conversation.
func (t *Timeline) Seed(id domain.ConversationID, messages []domain.MessagePayload) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conversations[id] = slices.Clone(messages)
}

// Consume applies one event. A message already known is not appended twice,
// so seeding and live events may overlap.
func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	messages := t.conversations[e.ConversationID()]
	switch evt := e.(type) {
	case event.MessageCreated:
		if indexOf(messages, evt.Payload.ID) < 0 {
			t.conversations[e.ConversationID()] = append(messages, evt.Payload)
		}
	case event.MessageEdited:
		if i := indexOf(messages, evt.Payload.ID); i >= 0 {
			messages[i] = evt.Payload
		}
	case event.MessageDeleted:
		if i := indexOf(messages, evt.Marker.ID); i >= 0 {
			t.conversations[e.ConversationID()] = slices.Delete(messages, i, i+1)
		}
	}
	return nil
}

// Messages returns a copy of the conversation's timeline.
func (t *Timeline) Messages(id domain.ConversationID) []domain.MessagePayload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.conversations[id])
}

func indexOf(messages []domain.MessagePayload, id domain.MessageID) int {
	return slices.IndexFunc(messages, func(m domain.MessagePayload) bool { return m.ID == id })
}
