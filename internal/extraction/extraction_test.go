package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

type countingObserver struct{ kinds []string }

func (c *countingObserver) ObserveLearned(kind string) { c.kinds = append(c.kinds, kind) }

func newTestExtractor(t *testing.T) (*Extractor, *knowledge.MemoryBase, *countingObserver) {
	t.Helper()
	kb := knowledge.NewMemoryBase()
	obs := &countingObserver{}
	return New(kb, WithLearnObserver(obs), WithLogger(logging.Discard())), kb, obs
}

func TestPrepassPriority(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		kind ShortcutKind
		want string
	}{
		{"emergency", "I have chest pain", ShortcutEmergency, EmergencyUtterance},
		{"emergency beats language", "emergency, can you speak hindi", ShortcutEmergency, EmergencyUtterance},
		{"language", "Can you speak Tamil?", ShortcutLanguage, "I can understand Tamil. Please tell me what health issue you're experiencing."},
		{"language beats off topic", "play a hindi song", ShortcutLanguage, LanguageUtterance("Hindi")},
		{"off topic", "who won the cricket match", ShortcutOffTopic, OffTopicUtterance},
		{"plural off topic", "I like games", ShortcutOffTopic, OffTopicUtterance},
		{"no shortcut", "I have a headache", ShortcutNone, ""},
		{"display is not play", "please display my slots", ShortcutNone, ""},
		{"empty", "   ", ShortcutNone, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Prepass(tc.msg)
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.want, got.Utterance)
			assert.Equal(t, tc.kind != ShortcutNone, got.Fired())
		})
	}
}

func TestDetectEmergencyKeywords(t *testing.T) {
	for _, kw := range emergencyKeywords {
		got, ok := DetectEmergency("caller says " + kw + " right now")
		require.True(t, ok, kw)
		assert.NotEmpty(t, got)
	}
	_, ok := DetectEmergency("I need a routine checkup")
	assert.False(t, ok)
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		msg  string
		want string
		ok   bool
	}{
		{"My name is Ravi Kumar", "Ravi Kumar", true},
		{"my name is ravi kumar and i am 30", "Ravi Kumar", true},
		{"I'm Anita", "Anita", true},
		{"call me Dev", "Dev", true},
		{"Priya", "Priya", true},
		{"sunil sharma", "Sunil Sharma", true},
		{"I am having fever", "", false},
		{"yes", "", false},
		{"fever", "", false},
		{"12345", "", false},
		{"my stomach hurts a lot today", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.msg, func(t *testing.T) {
			got, ok := ExtractName(tc.msg)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractAgeBounds(t *testing.T) {
	tests := []struct {
		msg  string
		want int
		ok   bool
	}{
		{"I am 45 years old", 45, true},
		{"2", 2, true},
		{"119 yrs", 119, true},
		{"150 years", 0, false},
		{"0 years", 0, false},
		{"1 year", 0, false},
		{"120", 0, false},
		{"twenty", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.msg, func(t *testing.T) {
			got, ok := ExtractAge(tc.msg)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractTimeSlot(t *testing.T) {
	tests := []struct {
		msg  string
		want string
		ok   bool
	}{
		{"10 am works", "10:00 AM", true},
		{"how about 3:30 pm", "3:30 PM", true},
		{"2pm please", "2:00 PM", true},
		{"2:00 is fine", "2:00 PM", true},
		{"5 o'clock", "5:00 PM", true},
		{"morning please", "Morning", true},
		{"at 7", "7:00 AM", true},
		{"15:30", "3:30 PM", true},
		{"no idea", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.msg, func(t *testing.T) {
			got, ok := ExtractTimeSlot(tc.msg)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSymptomsKnownPhrase(t *testing.T) {
	ex, _, obs := newTestExtractor(t)
	f, ok := ex.PrimarySymptom(context.Background(), "I have chest pain")
	require.True(t, ok)
	assert.Equal(t, "chest pain", f.Symptom)
	assert.Equal(t, "Cardiology", f.Department)
	assert.Empty(t, obs.kinds)
}

func TestSymptomsOrderedByPosition(t *testing.T) {
	ex, _, _ := newTestExtractor(t)
	findings := ex.Symptoms(context.Background(), "I have fever and a bad cough")
	require.Len(t, findings, 2)
	assert.Equal(t, "fever", findings[0].Symptom)
	assert.Equal(t, "cough", findings[1].Symptom)
}

func TestSymptomsLongerPhraseShadowsShorter(t *testing.T) {
	ex, _, _ := newTestExtractor(t)
	findings := ex.Symptoms(context.Background(), "I think it is an ear infection")
	require.Len(t, findings, 1)
	assert.Equal(t, "ear infection", findings[0].Symptom)
	assert.Equal(t, "ENT", findings[0].Department)
}

func TestSymptomsWordBoundary(t *testing.T) {
	ex, _, _ := newTestExtractor(t)
	assert.False(t, ex.HasSymptom(context.Background(), "I cracked my ribs laughing"))
}

func TestSymptomsBodyPartPattern(t *testing.T) {
	ex, _, _ := newTestExtractor(t)
	f, ok := ex.PrimarySymptom(context.Background(), "there is pain in my knee")
	require.True(t, ok)
	assert.Equal(t, "knee pain", f.Symptom)
	assert.Equal(t, "Orthopedics", f.Department)
}

func TestSymptomsBodyPartLearned(t *testing.T) {
	ctx := context.Background()
	ex, kb, obs := newTestExtractor(t)
	require.False(t, kb.Has(ctx, "eyelid pain"))

	f, ok := ex.PrimarySymptom(ctx, "my eyelid hurts")
	require.True(t, ok)
	assert.Equal(t, "eyelid pain", f.Symptom)
	assert.Equal(t, "Ophthalmology", f.Department)
	assert.True(t, kb.Has(ctx, "eyelid pain"))
	assert.Equal(t, []string{"symptom"}, obs.kinds)
}

func TestSymptomsComplaintPhraseLearnedOnce(t *testing.T) {
	ctx := context.Background()
	ex, kb, obs := newTestExtractor(t)

	f, ok := ex.PrimarySymptom(ctx, "I have a strange tingling")
	require.True(t, ok)
	assert.Equal(t, "strange tingling", f.Symptom)
	assert.Equal(t, knowledge.DefaultDepartment, f.Department)
	assert.True(t, kb.Has(ctx, "strange tingling"))

	f, ok = ex.PrimarySymptom(ctx, "still the strange tingling")
	require.True(t, ok)
	assert.Equal(t, "strange tingling", f.Symptom)
	assert.Len(t, obs.kinds, 1)
}

func TestSymptomsIgnoresNonComplaints(t *testing.T) {
	ex, _, _ := newTestExtractor(t)
	ctx := context.Background()
	for _, msg := range []string{
		"I want to book an appointment",
		"I have a question",
		"I have to go now",
		"yes",
		"hello",
	} {
		assert.False(t, ex.HasSymptom(ctx, msg), msg)
	}
}

func TestDetectIntentSeeded(t *testing.T) {
	ex, _, _ := newTestExtractor(t)
	intent, ok := ex.DetectIntent(context.Background(), "I want to book an appointment")
	require.True(t, ok)
	assert.Equal(t, knowledge.IntentBooking, intent)
}

func TestDetectIntentLearnsBookingPhrase(t *testing.T) {
	ctx := context.Background()
	ex, kb, obs := newTestExtractor(t)

	intent, ok := ex.DetectIntent(ctx, "I would like to schedule a visit")
	require.True(t, ok)
	assert.Equal(t, knowledge.IntentBooking, intent)
	assert.Equal(t, []string{"intent"}, obs.kinds)

	learned, ok := kb.LookupIntent(ctx, "i would like to schedule a visit")
	require.True(t, ok)
	assert.Equal(t, knowledge.IntentBooking, learned)
}

func TestDetectIntentSymptomTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	ex, kb, _ := newTestExtractor(t)
	before := kb.Stats(ctx).TotalIntents

	_, ok := ex.DetectIntent(ctx, "book me in, my back pain is bad")
	assert.False(t, ok)
	assert.Equal(t, before, kb.Stats(ctx).TotalIntents)
}

func TestContainsAnyWholeWords(t *testing.T) {
	assert.True(t, ContainsAny("Yes, that works", []string{"yes"}))
	assert.False(t, ContainsAny("I know him", []string{"no"}))
	assert.True(t, ContainsAny("thank you so much", []string{"thank you"}))
}

func TestAffirmativeNegative(t *testing.T) {
	assert.True(t, IsAffirmative("Yes thank you"))
	assert.True(t, IsAffirmative("go ahead"))
	assert.False(t, IsAffirmative("nope"))
	assert.True(t, IsNegative("no, that's wrong"))
	assert.False(t, IsNegative("I know"))
}
