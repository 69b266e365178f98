package dialogue

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/wolfman30/hospital-receptionist/internal/extraction"
	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

// Step-specific cues on top of the general affirmative and negative sets.
// Acceptance is always checked first.
var (
	offerAccept   = []string{"available", "time", "book", "schedule", "please"}
	offerReject   = []string{"other", "different", "another", "someone else"}
	confirmReject = []string{"change"}
)

// BaseSlots is the clinic's daily appointment grid.
var BaseSlots = []string{"9:00 AM", "10:30 AM", "11:00 AM", "2:00 PM", "3:30 PM", "4:00 PM", "5:00 PM"}

// SlotSource returns the slots offered for a department.
type SlotSource func(department string) []string

// RandomSlots simulates partially booked schedules: each base slot is kept
// with probability 0.7, at most four are offered and never fewer than two.
func RandomSlots(seed uint64) SlotSource {
	var mu sync.Mutex
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func(string) []string {
		mu.Lock()
		defer mu.Unlock()
		var out []string
		for _, slot := range BaseSlots {
			if rng.Float64() < 0.7 {
				out = append(out, slot)
			}
			if len(out) == 4 {
				break
			}
		}
		if len(out) < 2 {
			out = append([]string(nil), BaseSlots[:2]...)
		}
		return out
	}
}

// FixedSlots always offers the given slots.
func FixedSlots(slots ...string) SlotSource {
	return func(string) []string { return append([]string(nil), slots...) }
}

// Transition describes what one turn did to the state.
type Transition struct {
	From   Step
	To     Step
	Reason string
	// Progressed is true when a fact was recorded, even without a step change.
	Progressed bool
	// Completed is true only on the turn that first reaches StepComplete.
	Completed bool
}

// Changed reports whether the step moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Machine advances a conversation by one utterance.
type Machine struct {
	extractor *extraction.Extractor
	kb        knowledge.Base
	slots     SlotSource
	logger    *logging.Logger
}

func NewMachine(extractor *extraction.Extractor, slots SlotSource, logger *logging.Logger) *Machine {
	if extractor == nil {
		panic("dialogue: extractor cannot be nil")
	}
	if slots == nil {
		slots = FixedSlots(BaseSlots[:4]...)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Machine{extractor: extractor, kb: extractor.Knowledge(), slots: slots, logger: logger}
}

// Advance attempts the extraction the current step needs. A successful
// extraction records the fact and moves at most one step; a failed one
// leaves the state untouched. Reaching StepComplete records a success for
// the (symptom, department) pair exactly once.
func (m *Machine) Advance(ctx context.Context, in State, utterance string) (State, Transition) {
	st := in.Clone()
	if !st.Step.Valid() {
		st.Step = StepWelcome
	}
	tr := Transition{From: st.Step, To: st.Step}
	msg := strings.ToLower(strings.TrimSpace(utterance))
	if msg == "" {
		tr.Reason = "empty utterance"
		return st, tr
	}

	switch st.Step {
	case StepWelcome:
		if m.resolveSymptom(ctx, &st, msg) {
			tr = m.move(&st, tr, StepDoctorSuggestion, "symptom mentioned")
			break
		}
		if intent, ok := m.extractor.DetectIntent(ctx, msg); ok {
			st.Intent = intent
			next := StepSpecialIntent
			if intent == knowledge.IntentBooking {
				next = StepMedicalIssue
			}
			tr = m.move(&st, tr, next, "intent "+string(intent))
		}

	case StepSpecialIntent:
		if m.resolveSymptom(ctx, &st, msg) {
			tr = m.move(&st, tr, StepDoctorSuggestion, "symptom mentioned")
			break
		}
		if intent, ok := m.extractor.DetectIntent(ctx, msg); ok && intent == knowledge.IntentBooking {
			st.Intent = intent
			tr = m.move(&st, tr, StepMedicalIssue, "booking requested")
		}

	case StepMedicalIssue:
		if m.resolveSymptom(ctx, &st, msg) {
			tr = m.move(&st, tr, StepDoctorSuggestion, "symptom collected")
		}

	case StepDoctorSuggestion:
		switch {
		case extraction.IsAffirmative(msg) || extraction.ContainsAny(msg, offerAccept):
			st.SuggestedSlots = m.slots(st.Department)
			tr = m.move(&st, tr, StepTiming, "doctor accepted")
		case extraction.IsNegative(msg) || extraction.ContainsAny(msg, offerReject):
			tr = m.move(&st, tr, StepMedicalIssue, "doctor declined")
		}

	case StepTiming:
		if slot, ok := extraction.ExtractTimeSlot(msg); ok {
			st.ConfirmedSlot = slot
			tr = m.move(&st, tr, StepPatientInfo, "slot chosen")
		}

	case StepPatientInfo:
		if st.Name == "" {
			if name, ok := extraction.ExtractName(utterance); ok {
				st.Name = name
				tr.Progressed = true
				tr.Reason = "name recorded"
			}
		}
		if st.Age == 0 {
			if age, ok := extraction.ExtractAge(msg); ok {
				st.Age = age
				tr.Progressed = true
				tr.Reason = "age recorded"
			}
		}
		if st.Name != "" && st.Age != 0 {
			tr = m.move(&st, tr, StepConfirmation, "patient details complete")
		}

	case StepConfirmation:
		switch {
		case extraction.IsAffirmative(msg):
			tr = m.move(&st, tr, StepComplete, "booking confirmed")
			tr.Completed = true
			if st.Symptom != "" && st.Department != "" {
				count := m.kb.RecordSuccess(ctx, st.Symptom, st.Department)
				m.logger.Info("booking completed", "symptom", st.Symptom, "department", st.Department, "success_count", count)
			}
		case extraction.IsNegative(msg) || extraction.ContainsAny(msg, confirmReject):
			st.ConfirmedSlot = ""
			tr = m.move(&st, tr, StepTiming, "confirmation rejected")
		}

	case StepComplete:
		tr.Reason = "terminal"
	}

	if !CanTransition(tr.From, tr.To) {
		// Unreachable with the switch above; guards future edits.
		m.logger.Error("illegal dialogue transition blocked", "from", tr.From, "to", tr.To)
		return in.Clone(), Transition{From: in.Step, To: in.Step, Reason: fmt.Sprintf("blocked %s -> %s", tr.From, tr.To)}
	}
	return st, tr
}

func (m *Machine) move(st *State, tr Transition, to Step, reason string) Transition {
	st.Step = to
	tr.To = to
	tr.Reason = reason
	tr.Progressed = true
	return tr
}

// resolveSymptom records the primary symptom. Department and doctor are
// assigned on the first resolution only; a later, refined symptom string
// replaces Symptom but never the routing.
func (m *Machine) resolveSymptom(ctx context.Context, st *State, msg string) bool {
	finding, ok := m.extractor.PrimarySymptom(ctx, msg)
	if !ok {
		return false
	}
	st.Symptom = finding.Symptom
	if st.Department == "" {
		st.Department = finding.Department
		st.Doctor = m.kb.LookupDoctor(finding.Department)
	}
	return true
}
