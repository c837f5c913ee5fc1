package domain

// Command is an inbound real-time event, already bound to the session
// that sent it.
type Command interface {
	Session() SessionID
}

type SessionID string

func (id SessionID) String() string { return string(id) }

type JoinConversationCommand struct {
	SessionID      SessionID
	UserID         UserID
	ConversationID ConversationID
}

func (c JoinConversationCommand) Session() SessionID { return c.SessionID }

type SendMessageCommand struct {
	SessionID      SessionID
	UserID         UserID
	ConversationID ConversationID
	Content        string
}

func (c SendMessageCommand) Session() SessionID { return c.SessionID }
