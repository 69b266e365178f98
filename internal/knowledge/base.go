package knowledge

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Base is the symptom/intent knowledge store shared by every call.
// Writes are insert-if-absent: a learned key is never reassigned.
// Lookups degrade to defaults when the backing store is unreachable.
type Base interface {
	LookupDepartment(ctx context.Context, symptom string) string
	LookupDoctor(department string) string
	Has(ctx context.Context, symptom string) bool
	Symptoms(ctx context.Context) []string
	LearnIfAbsent(ctx context.Context, symptom, department string) bool

	LookupIntent(ctx context.Context, message string) (Intent, bool)
	LearnIntentIfAbsent(ctx context.Context, phrase string, intent Intent) bool

	RecordSuccess(ctx context.Context, symptom, department string) int64
	Stats(ctx context.Context) Stats
}

// Mapping is a symptom/department pair with its completed-booking count.
type Mapping struct {
	Symptom    string `json:"symptom"`
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// Stats summarizes the knowledge base for the operational stats endpoint.
type Stats struct {
	TotalSymptoms      int       `json:"totalSymptoms"`
	TotalIntents       int       `json:"totalIntents"`
	SuccessfulMappings []Mapping `json:"successfulMappings"`
	LastLearned        time.Time `json:"lastLearned,omitempty"`
}

// Normalize lowercases and collapses whitespace so keys compare stably.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// sortPhrases orders phrases longest first so substring matching prefers
// the most specific entry; ties break alphabetically for determinism.
func sortPhrases(phrases []string) {
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
}

func sortMappings(m []Mapping) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].Count != m[j].Count {
			return m[i].Count > m[j].Count
		}
		if m[i].Symptom != m[j].Symptom {
			return m[i].Symptom < m[j].Symptom
		}
		return m[i].Department < m[j].Department
	})
}

func matchIntent(message string, phrases []string, lookup func(string) Intent) (Intent, bool) {
	msg := Normalize(message)
	if msg == "" {
		return "", false
	}
	for _, phrase := range phrases {
		if strings.Contains(msg, phrase) {
			return lookup(phrase), true
		}
	}
	return "", false
}

const successKeySep = "|"

func successKey(symptom, department string) string {
	return symptom + successKeySep + department
}

func splitSuccessKey(key string) (string, string) {
	idx := strings.LastIndex(key, successKeySep)
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx+1:]
}
