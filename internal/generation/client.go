package generation

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrMissingCredentials is returned by constructors when the provider
	// has no API key or credentials configured.
	ErrMissingCredentials = errors.New("generation: missing credentials")
	// ErrEmptyResponse marks a reply that carried no usable text.
	ErrEmptyResponse = errors.New("generation: empty response")
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Request struct {
	Model    string
	System   []string
	Messages []Message
	// MaxTokens of zero leaves the provider default.
	MaxTokens int32
	// A negative Temperature leaves the provider default.
	Temperature float32
	TopP        float32
}

type Response struct {
	Text       string
	Usage      Usage
	StopReason string
}

// Client produces the next assistant utterance.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
