// Package event defines the events delivered to live sessions.
// Each variant has a fixed payload shape and a wire kind.
package event

import (
	"chat-hub/domain"
)

// Kind is the event name on the wire.
type Kind string

const (
	KindNewMessage     Kind = "message"
	KindEditedMessage  Kind = "editMessage"
	KindDeletedMessage Kind = "deleteMessage"
)

// DomainEvent is implemented by the three delivery variants only.
type DomainEvent interface {
	ConversationID() domain.ConversationID
	Kind() Kind
	// Data is the JSON payload of the wire frame.
	Data() any
}

type MessageCreated struct {
	Payload domain.MessagePayload
}

func (e MessageCreated) ConversationID() domain.ConversationID { return e.Payload.ConversationID }
func (e MessageCreated) Kind() Kind                            { return KindNewMessage }
func (e MessageCreated) Data() any                             { return e.Payload }

type MessageEdited struct {
	Payload domain.MessagePayload
}

func (e MessageEdited) ConversationID() domain.ConversationID { return e.Payload.ConversationID }
func (e MessageEdited) Kind() Kind                            { return KindEditedMessage }
func (e MessageEdited) Data() any                             { return e.Payload }

type MessageDeleted struct {
	Marker domain.DeleteMarker
}

func (e MessageDeleted) ConversationID() domain.ConversationID { return e.Marker.ConversationID }
func (e MessageDeleted) Kind() Kind                            { return KindDeletedMessage }
func (e MessageDeleted) Data() any                             { return e.Marker }

// Frame is the envelope written to a socket.
type Frame struct {
	Event Kind `json:"event"`
	Data  any  `json:"data"`
}

func ToFrame(e DomainEvent) Frame {
	return Frame{Event: e.Kind(), Data: e.Data()}
}
