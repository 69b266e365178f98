// Package composer turns dialogue state into a generation request and
// tidies the text that comes back.
package composer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/wolfman30/hospital-receptionist/internal/dialogue"
	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/internal/patients"
)

const (
	// HistoryWindow is the number of trailing turns sent with each request.
	HistoryWindow = 6

	DefaultUtterance = "How can I help you with your appointment today?"

	temperature = 0.3
	topP        = 0.8
	maxTokens   = 200
)

// Composer builds prompts for one hospital persona.
type Composer struct {
	hospital  string
	assistant string
	model     string
	now       func() time.Time
}

// Option configures a Composer.
type Option func(*Composer)

// WithModel pins the provider model id on every request.
func WithModel(model string) Option {
	return func(c *Composer) { c.model = strings.TrimSpace(model) }
}

// WithClock overrides the date printed into prompts.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

func New(hospital, assistant string, opts ...Option) *Composer {
	if strings.TrimSpace(hospital) == "" {
		hospital = "Aditya Hospital"
	}
	if strings.TrimSpace(assistant) == "" {
		assistant = "Clara"
	}
	c := &Composer{hospital: hospital, assistant: assistant, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Greeting is the first thing a caller hears.
func (c *Composer) Greeting() string {
	return fmt.Sprintf("Namaste, welcome to %s. This is %s, your AI receptionist. How can I assist you today?", c.hospital, c.assistant)
}

// Goodbye closes a call that ends outside the booking flow.
func (c *Composer) Goodbye() string {
	return fmt.Sprintf("Thank you for calling %s. Have a wonderful day!", c.hospital)
}

// Compose builds the request for the turn that produced st.
func (c *Composer) Compose(st dialogue.State, history []generation.Message, patient *patients.Patient) generation.Request {
	instruction, expected := c.stepGuidance(st)

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, an AI receptionist for %s. You are on a REAL-TIME PHONE CALL.\n\n", c.assistant, c.hospital)

	b.WriteString("CURRENT CONVERSATION STATE:\n")
	fmt.Fprintf(&b, "- Step: %s\n", st.Step)
	fmt.Fprintf(&b, "- Intent: %s\n", orDefault(string(st.Intent), "Not detected"))
	fmt.Fprintf(&b, "- Medical Issue: %s\n", orDefault(st.Symptom, "Not provided"))
	fmt.Fprintf(&b, "- Department: %s\n", orDefault(st.Department, "Not assigned"))
	fmt.Fprintf(&b, "- Doctor: %s\n", orDefault(st.Doctor, "Not assigned"))
	fmt.Fprintf(&b, "- Patient Name: %s\n", orDefault(st.Name, "Not provided"))
	fmt.Fprintf(&b, "- Patient Age: %s\n", orDefault(ageText(st.Age), "Not provided"))
	fmt.Fprintf(&b, "- Selected Slot: %s\n", orDefault(st.ConfirmedSlot, "Not selected"))
	if len(st.SuggestedSlots) > 0 {
		fmt.Fprintf(&b, "- Available Slots: %s\n", strings.Join(st.SuggestedSlots, ", "))
	}
	if next := st.Outstanding(); next != "" {
		fmt.Fprintf(&b, "- Still Needed: %s\n", next)
	}

	if patient != nil {
		b.WriteString("\nRETURNING PATIENT:\n")
		fmt.Fprintf(&b, "- Name on file: %s\n", orDefault(patient.Name, "unknown"))
		if appt := patient.LastAppointment; appt != nil {
			fmt.Fprintf(&b, "- Last visit: %s with %s (%s)\n", appt.Symptom, appt.Doctor, appt.Department)
		}
		b.WriteString("Greet them as a returning patient but still confirm details for this booking.\n")
	}

	fmt.Fprintf(&b, "\nSYSTEM INSTRUCTION: %s\n\n", instruction)
	b.WriteString("CRITICAL RULES - FOLLOW EXACTLY:\n")
	fmt.Fprintf(&b, "1. Aim for a reply like: %s\n", expected)
	b.WriteString("2. Keep the response to 1-2 SHORT sentences\n")
	b.WriteString("3. Speak naturally like a human receptionist\n")
	fmt.Fprintf(&b, "4. Use the patient's name if known: %s\n", orDefault(st.Name, "not known yet"))
	b.WriteString("5. NEVER ask for information we already have\n")
	b.WriteString("6. NEVER backtrack in the conversation flow\n")
	b.WriteString("7. If confirming the appointment, be very clear about the details\n")
	b.WriteString("8. NEVER start with \"Okay\", \"Alright\" or \"I understand\"\n")
	b.WriteString("9. If the caller mentions a symptom directly, acknowledge it naturally\n")
	fmt.Fprintf(&b, "\nTODAY'S DATE: %s\n", c.now().Format("02/01/2006"))

	req := generation.Request{
		Model:       c.model,
		System:      []string{b.String()},
		Messages:    Window(history, HistoryWindow),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
	if len(req.Messages) == 0 {
		req.Messages = []generation.Message{{Role: generation.RoleUser, Content: "Hello"}}
	}
	return req
}

func (c *Composer) stepGuidance(st dialogue.State) (instruction, expected string) {
	switch st.Step {
	case dialogue.StepWelcome:
		return "Welcome the caller and ask how you can help. Be ready for booking requests and direct symptom mentions.",
			fmt.Sprintf("Welcome to %s. How can I assist you today?", c.hospital)
	case dialogue.StepSpecialIntent:
		return fmt.Sprintf("The caller has a %s. Explain that you can book new appointments by phone and ask what health issue they need help with.", strings.ReplaceAll(string(st.Intent), "_", " ")),
			"I can help you book a new appointment. What health issue would you like to see a doctor for?"
	case dialogue.StepMedicalIssue:
		return "The caller wants to book an appointment. Ask what health issue or symptom they are experiencing.",
			"What health issue or symptom would you like to see the doctor for?"
	case dialogue.StepDoctorSuggestion:
		if st.Symptom != "" && st.Doctor != "" {
			return fmt.Sprintf("Caller mentioned %q. This is handled by %s. Suggest %s and ask if they would like to book.", st.Symptom, st.Department, st.Doctor),
				fmt.Sprintf("For %s, I recommend %s in %s. Would you like to book an appointment?", st.Symptom, st.Doctor, st.Department)
		}
		return "Suggest an appropriate doctor based on the symptom mentioned.",
			"I can help you book an appointment with the right specialist."
	case dialogue.StepTiming:
		slots := strings.Join(firstN(st.SuggestedSlots, 3), ", ")
		return fmt.Sprintf("Caller is booking with %s for %s. Offer 2-3 of the available time slots. Be flexible if they suggest their own time.", st.Doctor, st.Symptom),
			fmt.Sprintf("Available slots with %s: %s. Which time works for you?", st.Doctor, slots)
	case dialogue.StepPatientInfo:
		if st.Name == "" {
			return "Caller has selected a time slot. Ask for their full name.", "What is your full name?"
		}
		return fmt.Sprintf("Caller provided name: %s. Now ask for their age.", st.Name),
			fmt.Sprintf("Thank you %s. What is your age?", st.Name)
	case dialogue.StepConfirmation:
		return fmt.Sprintf("Confirm the appointment: %s (%s) with %s for %s at %s.", st.Name, ageText(st.Age), st.Doctor, st.Symptom, st.ConfirmedSlot),
			fmt.Sprintf("Confirming: %s, appointment with %s for %s at %s. Is this correct?", st.Name, st.Doctor, st.Symptom, st.ConfirmedSlot)
	case dialogue.StepComplete:
		return "The appointment is confirmed. Give the final details and thank the caller.",
			fmt.Sprintf("Your appointment is confirmed %s. Please arrive 15 minutes early. Thank you for choosing %s!", st.Name, c.hospital)
	default:
		return "Help the caller with their inquiry.", "How can I help you today?"
	}
}

// Window returns the last n turns, dropping leading assistant turns so the
// exchange always opens with the caller.
func Window(history []generation.Message, n int) []generation.Message {
	var msgs []generation.Message
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Role != generation.RoleUser && m.Role != generation.RoleAssistant {
			continue
		}
		msgs = append(msgs, m)
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	for len(msgs) > 0 && msgs[0].Role == generation.RoleAssistant {
		msgs = msgs[1:]
	}
	return append([]generation.Message(nil), msgs...)
}

var fillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(okay|ok|alright|sure|yes|no)[\s,.\-!]+`),
	regexp.MustCompile(`(?i)^i\s+understand[\s,.\-!]*`),
	regexp.MustCompile(`(?i)^i\s+see[\s,.\-!]*`),
	regexp.MustCompile(`(?i)^thank you for that[\s,.\-!]*`),
	regexp.MustCompile(`(?i)^great\b[,\s!]*`),
}

// Clean strips leading filler openers until none remain and falls back to
// DefaultUtterance when nothing is left.
func Clean(raw string) string {
	text := strings.TrimSpace(raw)
	stripped := false
	for changed := true; changed && text != ""; {
		changed = false
		for _, p := range fillerPatterns {
			if next := strings.TrimSpace(p.ReplaceAllString(text, "")); next != text {
				text = next
				changed = true
				stripped = true
			}
		}
	}
	if text == "" {
		return DefaultUtterance
	}
	if stripped {
		r := []rune(text)
		r[0] = unicode.ToUpper(r[0])
		text = string(r)
	}
	return text
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func ageText(age int) string {
	if age <= 0 {
		return ""
	}
	return strconv.Itoa(age)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
