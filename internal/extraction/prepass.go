package extraction

import (
	"fmt"
	"strings"
)

// ShortcutKind identifies which pre-pass detector fired.
type ShortcutKind string

const (
	ShortcutNone      ShortcutKind = ""
	ShortcutEmergency ShortcutKind = "emergency"
	ShortcutLanguage  ShortcutKind = "language"
	ShortcutOffTopic  ShortcutKind = "off_topic"
)

// EmergencyUtterance is spoken whenever a critical symptom is mentioned.
const EmergencyUtterance = "This sounds like a medical emergency. Please go to the nearest hospital emergency department immediately or call 108 for an ambulance. Do not delay."

// OffTopicUtterance redirects callers who stray from healthcare topics.
const OffTopicUtterance = "I'm here to help with hospital appointments and health concerns only. Please tell me what health issue you're facing."

// emergencyKeywords is matched by plain substring so that any mention errs
// toward the safety message.
var emergencyKeywords = []string{
	"heart attack", "chest pain", "difficulty breathing", "can't breathe",
	"cannot breathe", "unconscious", "passed out", "heavy bleeding",
	"severe bleeding", "stroke", "paralysis", "accident", "emergency",
	"choking", "burn", "poison", "overdose", "seizure",
}

var languageNames = []struct {
	keyword string
	name    string
}{
	{"tamil", "Tamil"},
	{"telugu", "Telugu"},
	{"hindi", "Hindi"},
	{"english", "English"},
	{"marathi", "Marathi"},
	{"bengali", "Bengali"},
	{"kannada", "Kannada"},
	{"malayalam", "Malayalam"},
}

var offTopicKeywords = []string{
	"song", "music", "movie", "video", "youtube", "facebook", "instagram",
	"whatsapp", "chat", "sex", "game", "play", "cricket", "football", "weather",
}

// Shortcut is the outcome of the pre-pass. A zero Kind means no detector fired.
type Shortcut struct {
	Kind      ShortcutKind
	Match     string
	Utterance string
}

// Fired reports whether the turn should bypass the state machine.
func (s Shortcut) Fired() bool {
	return s.Kind != ShortcutNone
}

// DetectEmergency returns the first critical keyword found in msg.
func DetectEmergency(msg string) (string, bool) {
	lower := strings.ToLower(msg)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}
	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// DetectLanguage returns the display name of a language mentioned in msg.
func DetectLanguage(msg string) (string, bool) {
	text := padded(msg)
	for _, l := range languageNames {
		if containsWord(text, l.keyword) {
			return l.name, true
		}
	}
	return "", false
}

// DetectOffTopic returns the first off-topic keyword found at a word start.
func DetectOffTopic(msg string) (string, bool) {
	text := padded(msg)
	for _, kw := range offTopicKeywords {
		if containsWordPrefix(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// LanguageUtterance acknowledges a language mention and redirects to the complaint.
func LanguageUtterance(language string) string {
	return fmt.Sprintf("I can understand %s. Please tell me what health issue you're experiencing.", language)
}

// Prepass runs the short-circuit detectors in priority order:
// emergency, then language, then off-topic.
func Prepass(msg string) Shortcut {
	if kw, ok := DetectEmergency(msg); ok {
		return Shortcut{Kind: ShortcutEmergency, Match: kw, Utterance: EmergencyUtterance}
	}
	if lang, ok := DetectLanguage(msg); ok {
		return Shortcut{Kind: ShortcutLanguage, Match: lang, Utterance: LanguageUtterance(lang)}
	}
	if kw, ok := DetectOffTopic(msg); ok {
		return Shortcut{Kind: ShortcutOffTopic, Match: kw, Utterance: OffTopicUtterance}
	}
	return Shortcut{}
}
