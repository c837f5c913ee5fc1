package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

type ConversationID string

func (id ConversationID) String() string { return string(id) }

// Conversation is either direct (exactly two participants, name ignored)
// or a group (one or more participants, mutable name).
type Conversation struct {
	ID           ConversationID
	IsGroup      bool
	Name         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Participants []Participant
}

// HasParticipant is the membership predicate behind every authorization
// decision on a conversation.
func (c Conversation) HasParticipant(userID UserID) bool {
	return lo.ContainsBy(c.Participants, func(p Participant) bool {
		return p.UserID == userID
	})
}

func (c Conversation) ParticipantIDs() []UserID {
	return lo.Map(c.Participants, func(p Participant, _ int) UserID { return p.UserID })
}

// DisplayName is the group name, empty for direct conversations.
func (c Conversation) DisplayName() string {
	if !c.IsGroup || c.Name == nil {
		return ""
	}
	return *c.Name
}

// MatchesName reports whether the display name contains term, ignoring case.
func (c Conversation) MatchesName(term string) bool {
	name := c.DisplayName()
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// ConversationDetails is what the store returns for listings: the
// conversation, its participants and its most recent message if any.
type ConversationDetails struct {
	Conversation
	LastMessage *Message
}

// DirectPairKey is the order-independent key of a user pair.
func DirectPairKey(a, b UserID) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + ":" + string(b)
}
