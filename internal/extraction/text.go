package extraction

import (
	"strings"
	"unicode"
)

// words lowercases msg and splits it on anything that is not a letter,
// digit or apostrophe.
func words(msg string) []string {
	return strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'')
	})
}

// padded returns the normalized word stream wrapped in single spaces so
// callers can test word-boundary membership with strings.Contains.
func padded(msg string) string {
	return " " + strings.Join(words(msg), " ") + " "
}

// containsWord reports whether phrase occurs as a whole-word run in text.
// text must come from padded.
func containsWord(text, phrase string) bool {
	return strings.Contains(text, " "+phrase+" ")
}

// containsWordPrefix reports whether phrase occurs starting at a word boundary,
// so "game" matches "games" but "play" does not match "display".
func containsWordPrefix(text, phrase string) bool {
	return strings.Contains(text, " "+phrase)
}

// ContainsAny reports whether any of the whole-word phrases appear in msg.
func ContainsAny(msg string, phrases []string) bool {
	text := padded(msg)
	for _, p := range phrases {
		if containsWord(text, p) {
			return true
		}
	}
	return false
}

var medicalTerms = []string{
	"pain", "ache", "fever", "cough", "cold", "headache", "stomach", "doctor",
	"hospital", "appointment", "medicine", "treatment", "symptom", "issue",
	"problem", "health", "medical", "emergency", "injury", "bleeding",
}

// ContainsMedicalTerm reports whether msg mentions any clinical or
// care-seeking vocabulary. Used to keep such replies out of name capture.
func ContainsMedicalTerm(msg string) bool {
	lower := strings.ToLower(msg)
	for _, term := range medicalTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

var acknowledgements = map[string]struct{}{
	"yes": {}, "no": {}, "okay": {}, "ok": {}, "alright": {}, "hello": {}, "hi": {},
	"hey": {}, "sure": {}, "thanks": {}, "thank you": {}, "fine": {}, "yeah": {},
	"nope": {}, "good": {}, "bye": {}, "goodbye": {}, "hmm": {}, "please": {},
}

// IsAcknowledgement reports whether msg is only a greeting or filler reply.
func IsAcknowledgement(msg string) bool {
	_, ok := acknowledgements[strings.Join(words(msg), " ")]
	return ok
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

var (
	affirmatives = []string{"yes", "yeah", "yep", "yup", "sure", "okay", "ok", "correct", "right", "confirm", "confirmed", "fine", "go ahead", "thank you", "thanks", "perfect"}
	negatives    = []string{"no", "nope", "nah", "not", "wrong", "incorrect"}
)

// IsAffirmative reports whether msg agrees with what was just offered.
func IsAffirmative(msg string) bool {
	return ContainsAny(msg, affirmatives)
}

// IsNegative reports whether msg declines what was just offered.
func IsNegative(msg string) bool {
	return ContainsAny(msg, negatives)
}
