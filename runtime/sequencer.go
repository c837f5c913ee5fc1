package runtime

import (
	"chat-hub/domain"
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// Sequencer serializes the writes of one conversation.
// Conversations hashing to the same stripe share a lock, which only costs
// parallelism, never ordering.
type Sequencer struct {
	stripes []sync.Mutex
}

func NewSequencer(stripes int) *Sequencer {
	if stripes <= 0 {
		stripes = defaultStripes
	}
	return &Sequencer{stripes: make([]sync.Mutex, stripes)}
}

// Do runs fn while holding the conversation's stripe.
func (s *Sequencer) Do(conversationID domain.ConversationID, fn func() error) error {
	mu := &s.stripes[s.index(conversationID)]
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (s *Sequencer) index(conversationID domain.ConversationID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(conversationID))
	return int(h.Sum32() % uint32(len(s.stripes)))
}
