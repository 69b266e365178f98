package calllog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	callKeyPrefix       = "receptionist:call:"
	transcriptKeyPrefix = "receptionist:transcript:"
	defaultTTL          = 24 * time.Hour
)

// RedisStore keeps call records and transcripts in Redis with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if rdb == nil {
		panic("calllog: redis client required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func callKey(callID string) string       { return callKeyPrefix + callID }
func transcriptKey(callID string) string { return transcriptKeyPrefix + callID }

func (s *RedisStore) StartCall(ctx context.Context, call Call) error {
	if call.CallID == "" {
		return errors.New("calllog: call_id required")
	}
	now := s.now().UTC()
	if call.StartedAt.IsZero() {
		call.StartedAt = now
	}
	call.LastActivityAt = now
	if call.Status == "" {
		call.Status = StatusRinging
	}
	return s.save(ctx, &call)
}

func (s *RedisStore) save(ctx context.Context, call *Call) error {
	data, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("calllog: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, callKey(call.CallID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("calllog: save: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, callID string) (*Call, error) {
	data, err := s.rdb.Get(ctx, callKey(callID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("calllog: get: %w", err)
	}
	var call Call
	if err := json.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("calllog: unmarshal: %w", err)
	}
	return &call, nil
}

// mutate loads, changes and saves a call, creating a bare record when the
// voice webhook was never seen (e.g. calls placed through the JSON API).
func (s *RedisStore) mutate(ctx context.Context, callID string, fn func(*Call)) error {
	if callID == "" {
		return errors.New("calllog: call_id required")
	}
	call, err := s.Get(ctx, callID)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if call == nil {
		call = &Call{CallID: callID, Status: StatusActive, StartedAt: now}
	}
	fn(call)
	call.LastActivityAt = now
	return s.save(ctx, call)
}

func (s *RedisStore) UpdateStatus(ctx context.Context, callID, status string) error {
	return s.mutate(ctx, callID, func(c *Call) { c.Status = status })
}

func (s *RedisStore) EndCall(ctx context.Context, callID, outcome string) error {
	now := s.now().UTC()
	return s.mutate(ctx, callID, func(c *Call) {
		c.Status = StatusEnded
		if c.Outcome == "" || outcome == "booked" {
			c.Outcome = outcome
		}
		if c.EndedAt.IsZero() {
			c.EndedAt = now
		}
	})
}

func (s *RedisStore) AppendTurn(ctx context.Context, callID string, entry Entry) error {
	if callID == "" {
		return errors.New("calllog: call_id required")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("calllog: marshal entry: %w", err)
	}
	pipe := s.rdb.Pipeline()
	pipe.RPush(ctx, transcriptKey(callID), data)
	pipe.Expire(ctx, transcriptKey(callID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("calllog: append: %w", err)
	}
	if entry.Role == "user" {
		return s.mutate(ctx, callID, func(c *Call) {
			c.TurnCount++
			if c.Status == StatusRinging {
				c.Status = StatusActive
			}
		})
	}
	return nil
}

func (s *RedisStore) Transcript(ctx context.Context, callID string) ([]Entry, error) {
	data, err := s.rdb.LRange(ctx, transcriptKey(callID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("calllog: transcript: %w", err)
	}
	entries := make([]Entry, 0, len(data))
	for _, d := range data {
		var entry Entry
		if err := json.Unmarshal([]byte(d), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
