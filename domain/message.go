// Package domain contains core concepts of the chat system.
// This file defines Message entities and the payloads built from them.
// Content is mutable by its sender only, ownership never changes.
package domain

import (
	"time"
)

type MessageID string

func (id MessageID) String() string { return string(id) }

// Message is a persisted chat message.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       UserID
	Content        string
	CreatedAt      time.Time
}

// Sender is the only projection of a user carried by a message payload.
type Sender struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// MessagePayload is the canonical shape returned to callers and
// delivered to live sessions.
type MessagePayload struct {
	ID             MessageID      `json:"id"`
	Content        string         `json:"content"`
	CreatedAt      time.Time      `json:"createdAt"`
	ConversationID ConversationID `json:"conversationId"`
	Sender         Sender         `json:"sender"`
}

// DeleteMarker is delivered when a message is removed.
type DeleteMarker struct {
	ID             MessageID      `json:"id"`
	ConversationID ConversationID `json:"conversationId"`
}

func NewMessagePayload(m Message, sender Sender) MessagePayload {
	return MessagePayload{
		ID:             m.ID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		ConversationID: m.ConversationID,
		Sender:         sender,
	}
}
