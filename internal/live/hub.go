// Package live mirrors call activity to dashboard subscribers.
package live

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

const (
	EventCallIncoming        = "call-incoming"
	EventConversationMessage = "conversation-message"
	EventCallEnded           = "call-ended"
	EventCallStatus          = "call-status-update"
)

const subscriberBuffer = 32

// Event is one push message to dashboards.
type Event struct {
	Type      string         `json:"type"`
	CallID    string         `json:"callId"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Subscription receives events until it is cancelled.
type Subscription struct {
	ID     string
	CallID string
	events chan Event
}

// Events yields delivered events. The channel closes on Unsubscribe.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Hub fans events out to subscribers. Delivery is at-most-once: a full
// subscriber buffer drops the event for that subscriber only.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	logger *logging.Logger
	now    func() time.Time
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{subs: make(map[string]*Subscription), logger: logger, now: time.Now}
}

// Subscribe registers a listener. An empty callID receives every call.
func (h *Hub) Subscribe(callID string) *Subscription {
	sub := &Subscription{ID: uuid.NewString(), CallID: callID, events: make(chan Event, subscriberBuffer)}
	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.ID]; ok {
		delete(h.subs, sub.ID)
		close(sub.events)
	}
}

// Publish never blocks. It is a no-op on a nil hub.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = h.now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.CallID != "" && sub.CallID != evt.CallID {
			continue
		}
		select {
		case sub.events <- evt:
		default:
			h.logger.Warn("live subscriber buffer full, dropping event", "subscriber", sub.ID, "type", evt.Type, "call_id", evt.CallID)
		}
	}
}

// Subscribers reports the number of connected listeners.
func (h *Hub) Subscribers() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
