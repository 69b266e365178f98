package dialogue

import (
	"sync"
	"time"
)

// Store keeps one State per conversation key. All methods are safe for
// concurrent use and hand out copies, never shared references.
type Store struct {
	mu     sync.Mutex
	states map[string]State
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{states: make(map[string]State), now: time.Now}
}

// Begin marks the start of a turn: it creates the state if needed, bumps the
// conversation count and touches LastUpdated.
func (s *Store) Begin(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	st, ok := s.states[key]
	if !ok {
		st = NewState(now)
	}
	st.ConversationCount++
	st.LastUpdated = now
	s.states[key] = st
	return st.Clone()
}

// Get returns the state for key without touching it.
func (s *Store) Get(key string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[key]
	return st.Clone(), ok
}

// Save replaces the stored state.
func (s *Store) Save(key string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.LastUpdated = s.now()
	s.states[key] = st.Clone()
}

// Delete drops the conversation and reports whether it existed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.states[key]
	delete(s.states, key)
	return ok
}

// RemoveIdle drops every conversation not updated since cutoff.
func (s *Store) RemoveIdle(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for key, st := range s.states {
		if st.LastUpdated.Before(cutoff) {
			delete(s.states, key)
			removed = append(removed, key)
		}
	}
	return removed
}

// Len reports the number of live conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
