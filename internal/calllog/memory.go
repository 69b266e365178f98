package calllog

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore is the Redis-less Store. Records never expire.
type MemoryStore struct {
	mu          sync.Mutex
	calls       map[string]Call
	transcripts map[string][]Entry
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{calls: make(map[string]Call), transcripts: make(map[string][]Entry), now: time.Now}
}

func (s *MemoryStore) StartCall(_ context.Context, call Call) error {
	if call.CallID == "" {
		return errors.New("calllog: call_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	if call.StartedAt.IsZero() {
		call.StartedAt = now
	}
	if call.Status == "" {
		call.Status = StatusRinging
	}
	call.LastActivityAt = now
	s.calls[call.CallID] = call
	return nil
}

func (s *MemoryStore) mutate(callID string, fn func(*Call)) error {
	if callID == "" {
		return errors.New("calllog: call_id required")
	}
	now := s.now().UTC()
	call, ok := s.calls[callID]
	if !ok {
		call = Call{CallID: callID, Status: StatusActive, StartedAt: now}
	}
	fn(&call)
	call.LastActivityAt = now
	s.calls[callID] = call
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, callID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(callID, func(c *Call) { c.Status = status })
}

func (s *MemoryStore) EndCall(_ context.Context, callID, outcome string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	return s.mutate(callID, func(c *Call) {
		c.Status = StatusEnded
		if c.Outcome == "" || outcome == "booked" {
			c.Outcome = outcome
		}
		if c.EndedAt.IsZero() {
			c.EndedAt = now
		}
	})
}

func (s *MemoryStore) AppendTurn(_ context.Context, callID string, entry Entry) error {
	if callID == "" {
		return errors.New("calllog: call_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	s.transcripts[callID] = append(s.transcripts[callID], entry)
	if entry.Role == "user" {
		return s.mutate(callID, func(c *Call) {
			c.TurnCount++
			if c.Status == StatusRinging {
				c.Status = StatusActive
			}
		})
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, callID string) (*Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call, ok := s.calls[callID]
	if !ok {
		return nil, nil
	}
	return &call, nil
}

func (s *MemoryStore) Transcript(_ context.Context, callID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.transcripts[callID]...), nil
}
