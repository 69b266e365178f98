package dialogue

import (
	"strings"
	"time"

	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
)

// Step is the closed set of dialogue stages.
type Step string

const (
	StepWelcome          Step = "welcome"
	StepSpecialIntent    Step = "special_intent"
	StepMedicalIssue     Step = "medical_issue"
	StepDoctorSuggestion Step = "doctor_suggestion"
	StepTiming           Step = "timing"
	StepPatientInfo      Step = "patient_info"
	StepConfirmation     Step = "confirmation"
	StepComplete         Step = "complete"
)

// Steps lists every step in flow order.
var Steps = []Step{
	StepWelcome, StepSpecialIntent, StepMedicalIssue, StepDoctorSuggestion,
	StepTiming, StepPatientInfo, StepConfirmation, StepComplete,
}

// Valid reports whether s is one of the defined steps.
func (s Step) Valid() bool {
	for _, step := range Steps {
		if s == step {
			return true
		}
	}
	return false
}

// edges are the only legal step changes. Staying put is always legal.
// doctor_suggestion -> medical_issue and confirmation -> timing are the
// regression edges taken when the caller rejects an offer.
var edges = map[Step][]Step{
	StepWelcome:          {StepMedicalIssue, StepDoctorSuggestion, StepSpecialIntent},
	StepSpecialIntent:    {StepMedicalIssue, StepDoctorSuggestion},
	StepMedicalIssue:     {StepDoctorSuggestion},
	StepDoctorSuggestion: {StepTiming, StepMedicalIssue},
	StepTiming:           {StepPatientInfo},
	StepPatientInfo:      {StepConfirmation},
	StepConfirmation:     {StepComplete, StepTiming},
	StepComplete:         {},
}

// CanTransition reports whether the machine may move from one step to another.
func CanTransition(from, to Step) bool {
	if from == to {
		return from.Valid()
	}
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsRegression reports whether from -> to is one of the rejection edges.
func IsRegression(from, to Step) bool {
	return (from == StepDoctorSuggestion && to == StepMedicalIssue) ||
		(from == StepConfirmation && to == StepTiming)
}

// State is the per-call dialogue record.
type State struct {
	Step              Step             `json:"step"`
	Intent            knowledge.Intent `json:"intent,omitempty"`
	Symptom           string           `json:"symptom,omitempty"`
	Department        string           `json:"department,omitempty"`
	Doctor            string           `json:"doctor,omitempty"`
	Name              string           `json:"name,omitempty"`
	Age               int              `json:"age,omitempty"`
	SuggestedSlots    []string         `json:"suggestedSlots,omitempty"`
	ConfirmedSlot     string           `json:"confirmedSlot,omitempty"`
	ConversationCount int              `json:"conversationCount"`
	CreatedAt         time.Time        `json:"createdAt"`
	LastUpdated       time.Time        `json:"lastUpdated"`
}

// NewState returns a fresh conversation at the welcome step.
func NewState(now time.Time) State {
	return State{Step: StepWelcome, CreatedAt: now, LastUpdated: now}
}

// Clone returns a deep copy so callers never share the slot slice.
func (s State) Clone() State {
	if s.SuggestedSlots != nil {
		s.SuggestedSlots = append([]string(nil), s.SuggestedSlots...)
	}
	return s
}

// Outstanding names the next fact the flow still needs, or "" when done.
func (s State) Outstanding() string {
	switch s.Step {
	case StepWelcome, StepSpecialIntent, StepMedicalIssue:
		return "symptom"
	case StepDoctorSuggestion:
		return "doctor_acceptance"
	case StepTiming:
		return "time_slot"
	case StepPatientInfo:
		if s.Name == "" {
			return "name"
		}
		return "age"
	case StepConfirmation:
		return "confirmation"
	default:
		return ""
	}
}

// Key picks the conversation key: call id, then caller phone, then "default".
func Key(callID, callerPhone string) string {
	if k := strings.TrimSpace(callID); k != "" {
		return k
	}
	if k := strings.TrimSpace(callerPhone); k != "" {
		return k
	}
	return "default"
}
