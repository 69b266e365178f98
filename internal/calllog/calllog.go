// Package calllog records call lifecycle and per-call transcripts.
package calllog

import (
	"context"
	"time"
)

const (
	StatusRinging = "ringing"
	StatusActive  = "active"
	StatusEnded   = "ended"
)

// Call is the lifecycle record of one phone call.
type Call struct {
	CallID         string    `json:"call_id"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Status         string    `json:"status"`
	TurnCount      int       `json:"turn_count"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	EndedAt        time.Time `json:"ended_at,omitempty"`
	// Outcome is how the call ended: booked, completed, failed, busy, no-answer, canceled.
	Outcome string `json:"outcome,omitempty"`
}

// Entry is a single turn in a call transcript.
type Entry struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Step      string    `json:"step,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists calls and transcripts. Get returns nil, nil for unknown calls.
type Store interface {
	StartCall(ctx context.Context, call Call) error
	UpdateStatus(ctx context.Context, callID, status string) error
	AppendTurn(ctx context.Context, callID string, entry Entry) error
	EndCall(ctx context.Context, callID, outcome string) error
	Get(ctx context.Context, callID string) (*Call, error)
	Transcript(ctx context.Context, callID string) ([]Entry, error)
}
