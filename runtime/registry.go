package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"sync"
)

type Set[K comparable] map[K]struct{}

type session struct {
	userID domain.UserID
	sink   contract.EventSink
	joined Set[domain.ConversationID]
}

// Registry maps conversations to the live sessions that joined them.
// It is process local and never persisted: clients rejoin after a restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*session
	groups   map[domain.ConversationID]Set[domain.SessionID]
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.SessionID]*session),
		groups:   make(map[domain.ConversationID]Set[domain.SessionID]),
	}
}

// Register records a live session. Registering an existing session id
// replaces its sink and keeps its groups.
func (r *Registry) Register(sessionID domain.SessionID, userID domain.UserID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.sink = sink
		return
	}
	r.sessions[sessionID] = &session{userID: userID, sink: sink, joined: make(Set[domain.ConversationID])}
}

// Join adds the session to the conversation's delivery group.
// It returns false for a session that is not registered.
func (r *Registry) Join(sessionID domain.SessionID, conversationID domain.ConversationID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	if _, ok = r.groups[conversationID]; !ok {
		r.groups[conversationID] = make(Set[domain.SessionID])
	}
	r.groups[conversationID][sessionID] = struct{}{}
	s.joined[conversationID] = struct{}{}
	return true
}

// Disconnect removes the session from every group it joined.
// Calling it again, or for an unknown session, does nothing.
func (r *Registry) Disconnect(sessionID domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	for conversationID := range s.joined {
		if members, ok := r.groups[conversationID]; ok {
			delete(members, sessionID)
			// No empty sets left behind
			if len(members) == 0 {
				delete(r.groups, conversationID)
			}
		}
	}
	delete(r.sessions, sessionID)
}

// GetSinksForConversation returns the sinks joined to the conversation
// at call time, nil when nobody joined.
func (r *Registry) GetSinksForConversation(conversationID domain.ConversationID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.groups[conversationID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for sessionID := range members {
		if s, exists := r.sessions[sessionID]; exists {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

// RegistryStats is a point in time view for the debug endpoint.
type RegistryStats struct {
	Sessions      int `json:"sessions"`
	Users         int `json:"users"`
	Conversations int `json:"conversations"`
}

func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(Set[domain.UserID])
	for _, s := range r.sessions {
		users[s.userID] = struct{}{}
	}
	return RegistryStats{Sessions: len(r.sessions), Users: len(users), Conversations: len(r.groups)}
}
