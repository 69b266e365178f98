package composer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/hospital-receptionist/internal/dialogue"
	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/internal/patients"
)

func fixedClock() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Okay, what is your name?", "What is your name?"},
		{"Alright. I understand, which time suits you?", "Which time suits you?"},
		{"Great! Your appointment is booked.", "Your appointment is booked."},
		{"I see - could you spell that?", "Could you spell that?"},
		{"Yesterday's slots are gone.", "Yesterday's slots are gone."},
		{"Greatly appreciated.", "Greatly appreciated."},
		{"   ", DefaultUtterance},
		{"Okay!", DefaultUtterance},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Clean(tc.in))
		})
	}
}

func TestWindow(t *testing.T) {
	var history []generation.Message
	for i := 0; i < 5; i++ {
		history = append(history,
			generation.Message{Role: generation.RoleAssistant, Content: "a"},
			generation.Message{Role: generation.RoleUser, Content: "u"},
		)
	}
	got := Window(history, HistoryWindow)
	require.Len(t, got, 5)
	assert.Equal(t, generation.RoleUser, got[0].Role)
	assert.Equal(t, generation.RoleUser, got[len(got)-1].Role)

	assert.Empty(t, Window([]generation.Message{{Role: generation.RoleAssistant, Content: "hi"}}, 6))
	assert.Len(t, Window([]generation.Message{{Role: "tool", Content: "x"}, {Role: generation.RoleUser, Content: " "}}, 6), 0)
}

func TestComposeTiming(t *testing.T) {
	c := New("Aditya Hospital", "Clara", WithClock(fixedClock), WithModel("gemini-test"))
	st := dialogue.NewState(fixedClock())
	st.Step = dialogue.StepTiming
	st.Symptom = "chest pain"
	st.Department = "Cardiology"
	st.Doctor = "Dr. Meera Sharma"
	st.SuggestedSlots = []string{"9:00 AM", "11:00 AM", "2:00 PM", "4:00 PM"}

	req := c.Compose(st, []generation.Message{{Role: generation.RoleUser, Content: "yes"}}, nil)

	require.Len(t, req.System, 1)
	prompt := req.System[0]
	assert.Contains(t, prompt, "You are Clara, an AI receptionist for Aditya Hospital")
	assert.Contains(t, prompt, "- Doctor: Dr. Meera Sharma")
	assert.Contains(t, prompt, "Available slots with Dr. Meera Sharma: 9:00 AM, 11:00 AM, 2:00 PM.")
	assert.Contains(t, prompt, "- Still Needed: time_slot")
	assert.Contains(t, prompt, "TODAY'S DATE: 15/10/2026")
	assert.NotContains(t, prompt, "RETURNING PATIENT")

	assert.Equal(t, "gemini-test", req.Model)
	assert.Equal(t, int32(200), req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.InDelta(t, 0.8, req.TopP, 1e-6)
	assert.Len(t, req.Messages, 1)
}

func TestComposeStepInstructions(t *testing.T) {
	c := New("", "", WithClock(fixedClock))
	cases := map[dialogue.Step]string{
		dialogue.StepWelcome:       "Welcome the caller",
		dialogue.StepMedicalIssue:  "Ask what health issue",
		dialogue.StepPatientInfo:   "Ask for their full name",
		dialogue.StepConfirmation:  "Confirm the appointment",
		dialogue.StepComplete:      "Thank you for choosing Aditya Hospital",
		dialogue.StepSpecialIntent: "cancellation request",
	}
	for step, want := range cases {
		st := dialogue.NewState(fixedClock())
		st.Step = step
		st.Intent = "cancellation_request"
		req := c.Compose(st, nil, nil)
		assert.Contains(t, req.System[0], want, step)
		require.Len(t, req.Messages, 1, step)
		assert.Equal(t, generation.RoleUser, req.Messages[0].Role)
	}
}

func TestComposeAsksAgeOnceNameKnown(t *testing.T) {
	c := New("Aditya Hospital", "Clara", WithClock(fixedClock))
	st := dialogue.NewState(fixedClock())
	st.Step = dialogue.StepPatientInfo
	st.Name = "Ravi Kumar"
	prompt := c.Compose(st, nil, nil).System[0]
	assert.Contains(t, prompt, "Thank you Ravi Kumar. What is your age?")
	assert.Contains(t, prompt, "Use the patient's name if known: Ravi Kumar")
	assert.False(t, strings.Contains(prompt, "Ask for their full name"))
}

func TestComposeReturningPatient(t *testing.T) {
	c := New("Aditya Hospital", "Clara", WithClock(fixedClock))
	p := &patients.Patient{Name: "Anita", LastAppointment: &patients.Appointment{
		Symptom: "knee pain", Doctor: "Dr. Rohit Verma", Department: "Orthopedics",
	}}
	prompt := c.Compose(dialogue.NewState(fixedClock()), nil, p).System[0]
	assert.Contains(t, prompt, "RETURNING PATIENT")
	assert.Contains(t, prompt, "knee pain with Dr. Rohit Verma (Orthopedics)")
}

func TestGreetingAndGoodbye(t *testing.T) {
	c := New("City Clinic", "Asha")
	assert.Equal(t, "Namaste, welcome to City Clinic. This is Asha, your AI receptionist. How can I assist you today?", c.Greeting())
	assert.Contains(t, c.Goodbye(), "Thank you for calling City Clinic")
}
