// Package fallback keeps the caller hearing something when generation is
// unavailable, and expires idle conversations.
package fallback

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/wolfman30/hospital-receptionist/internal/extraction"
	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

// Reason says why the fallback was used.
type Reason string

const (
	ReasonNoAPIKey        Reason = "no_api_key"
	ReasonTimeout         Reason = "timeout"
	ReasonAPIError        Reason = "api_error"
	ReasonInvalidResponse Reason = "invalid_response"
)

// GenericResponses are the re-prompts used when no emergency is in play.
var GenericResponses = []string{
	"How can I help you with your appointment today?",
	"What would you like to schedule an appointment for?",
	"How can I assist you with your healthcare needs?",
	"Could you tell me what health issue you'd like to see a doctor about?",
}

type Response struct {
	Text      string
	Reason    Reason
	Emergency bool
}

// Responder picks fallback utterances. It is safe for concurrent use.
type Responder struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *logging.Logger
}

func NewResponder(seed uint64, logger *logging.Logger) *Responder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{rng: rand.New(rand.NewPCG(seed, seed+1)), logger: logger}
}

// Respond never returns empty text. An emergency in the caller's last
// utterance always wins over the generic re-prompts.
func (r *Responder) Respond(history []generation.Message, reason Reason) Response {
	if last := lastUserUtterance(history); last != "" {
		if kw, ok := extraction.DetectEmergency(last); ok {
			r.logger.Warn("fallback emergency response", "reason", reason, "keyword", kw)
			return Response{Text: extraction.EmergencyUtterance, Reason: reason, Emergency: true}
		}
	}
	r.mu.Lock()
	idx := r.rng.IntN(len(GenericResponses))
	r.mu.Unlock()
	r.logger.Info("fallback response used", "reason", reason)
	return Response{Text: GenericResponses[idx], Reason: reason}
}

func lastUserUtterance(history []generation.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == generation.RoleUser {
			return strings.TrimSpace(history[i].Content)
		}
	}
	return ""
}
