// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/samber/lo"
)

// Participant is the membership record authorizing a user to read and
// write a conversation. (ConversationID, UserID) is unique.
type Participant struct {
	ConversationID ConversationID
	UserID         UserID
	JoinedAt       time.Time
}

// UniqueParticipants de-duplicates ids and always includes the creator.
// Input order is kept, the creator is appended when missing.
func UniqueParticipants(creator UserID, ids []UserID) []UserID {
	return lo.Uniq(append(append([]UserID{}, ids...), creator))
}
