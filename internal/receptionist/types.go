package receptionist

import (
	"time"

	"github.com/wolfman30/hospital-receptionist/internal/dialogue"
	"github.com/wolfman30/hospital-receptionist/internal/fallback"
	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
	"github.com/wolfman30/hospital-receptionist/internal/patients"
)

// Source says where a reply came from.
type Source string

const (
	SourceGeneration Source = "receptionist_ai"
	SourceFallback   Source = "fallback"
	SourceEmergency  Source = "emergency_detection"
	SourceLanguage   Source = "language_detection"
	SourceOffTopic   Source = "off_topic_detection"
)

// TurnRequest is one caller utterance plus what the edge knows about the call.
// The caller's latest utterance is the last user message in History.
type TurnRequest struct {
	History     []generation.Message
	Patient     *patients.Patient
	CallerPhone string
	CallID      string
}

// TurnResult is always populated with a speakable utterance.
type TurnResult struct {
	Utterance      string          `json:"response"`
	ShouldEndCall  bool            `json:"shouldEndCall"`
	State          dialogue.State  `json:"state"`
	Source         Source          `json:"source"`
	FallbackReason fallback.Reason `json:"fallbackReason,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

type Stats struct {
	TotalSymptoms       int                 `json:"totalSymptoms"`
	TotalIntents        int                 `json:"totalIntents"`
	SuccessfulMappings  []knowledge.Mapping `json:"successfulMappings"`
	ActiveConversations int                 `json:"activeConversations"`
	LastLearned         time.Time           `json:"lastLearned,omitempty"`
}
