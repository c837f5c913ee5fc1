package domain

import (
	"time"

	"github.com/samber/lo"
)

// ParticipantView carries enough of a participant to render a title.
type ParticipantView struct {
	UserID   UserID    `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ConversationSummary is one row of a conversation listing.
type ConversationSummary struct {
	ID           ConversationID    `json:"id"`
	IsGroup      bool              `json:"isGroup"`
	Name         *string           `json:"name"`
	Title        string            `json:"title"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Participants []ParticipantView `json:"participants"`
	LastMessage  *MessagePayload   `json:"lastMessage"`
}

// NewConversationSummary resolves participant identities through users and
// picks a title from the viewer's point of view: the group name, or the
// other participant's username for direct conversations.
func NewConversationSummary(viewer UserID, d ConversationDetails, users map[UserID]User) ConversationSummary {
	participants := lo.Map(d.Participants, func(p Participant, _ int) ParticipantView {
		u := users[p.UserID]
		return ParticipantView{UserID: p.UserID, Username: u.Username, Email: u.Email, JoinedAt: p.JoinedAt}
	})

	summary := ConversationSummary{
		ID:           d.ID,
		IsGroup:      d.IsGroup,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		Participants: participants,
	}
	if d.IsGroup {
		summary.Name = d.Name
		summary.Title = d.DisplayName()
	} else if other, ok := lo.Find(participants, func(p ParticipantView) bool { return p.UserID != viewer }); ok {
		summary.Title = other.Username
	}

	if d.LastMessage != nil {
		sender := users[d.LastMessage.SenderID]
		summary.LastMessage = lo.ToPtr(NewMessagePayload(*d.LastMessage, Sender{ID: d.LastMessage.SenderID, Username: sender.Username}))
	}
	return summary
}
