package extraction

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/wolfman30/hospital-receptionist/internal/knowledge"
)

// Finding is one symptom phrase located by a strategy.
type Finding struct {
	Symptom    string
	Department string
	// Known is true when the phrase was already in the knowledge base.
	Known bool
	// Position is the byte offset of the match, used to order findings.
	Position int
}

// Input is the utterance as seen by a strategy.
type Input struct {
	// Raw is the lowercased utterance with punctuation intact.
	Raw string
	// Text is the word-normalized utterance padded with spaces.
	Text string
	// Known lists knowledge base phrases, longest first.
	Known []string
}

// SymptomStrategy is one step of the symptom cascade. Strategies only read
// the knowledge base; learning happens in the Extractor.
type SymptomStrategy struct {
	Name string
	Find func(ctx context.Context, in Input, kb knowledge.Base) []Finding
}

// DefaultSymptomStrategies is the fixed priority order: known phrases,
// body-part pain constructions, "I have ..." complaints, generic fallback.
func DefaultSymptomStrategies() []SymptomStrategy {
	return []SymptomStrategy{
		{Name: "known_phrase", Find: findKnownPhrases},
		{Name: "body_part", Find: findBodyPartPain},
		{Name: "complaint_phrase", Find: findComplaintPhrase},
		{Name: "generic", Find: findGenericComplaint},
	}
}

func findKnownPhrases(ctx context.Context, in Input, kb knowledge.Base) []Finding {
	var out []Finding
	for _, phrase := range in.Known {
		idx := strings.Index(in.Text, " "+phrase)
		if idx < 0 {
			continue
		}
		shadowed := false
		for _, f := range out {
			if strings.Contains(f.Symptom, phrase) {
				shadowed = true
				break
			}
		}
		if shadowed {
			continue
		}
		out = append(out, Finding{
			Symptom:    phrase,
			Department: kb.LookupDepartment(ctx, phrase),
			Known:      true,
			Position:   idx,
		})
	}
	return out
}

var bodyPartTemplates = []string{
	"%s pain", "%s ache", "pain in my %s", "pain in %s", "ache in my %s",
	"ache in %s", "hurting %s", "sore %s", "my %s hurts", "%s hurts",
}

func findBodyPartPain(ctx context.Context, in Input, kb knowledge.Base) []Finding {
	var out []Finding
	seen := map[string]struct{}{}
	for _, part := range knowledge.BodyParts {
		if !containsWord(in.Text, part) {
			continue
		}
		for _, tmpl := range bodyPartTemplates {
			idx := strings.Index(in.Text, " "+strings.Replace(tmpl, "%s", part, 1)+" ")
			if idx < 0 {
				continue
			}
			symptom := part + " pain"
			if _, dup := seen[symptom]; dup {
				break
			}
			seen[symptom] = struct{}{}
			f := Finding{Symptom: symptom, Position: idx}
			if kb.Has(ctx, symptom) {
				f.Known = true
				f.Department = kb.LookupDepartment(ctx, symptom)
			} else {
				f.Department = knowledge.DepartmentForBodyPart(part)
			}
			out = append(out, f)
			break
		}
	}
	return out
}

var complaintPattern = regexp.MustCompile(`\b(?:i have|i've got|i've|i'm having|i am having|i feel|i'm feeling|i am feeling|feeling|suffering from|experiencing|got|having)\s+([^,.!?]+)`)

var leadingArticles = []string{"a ", "an ", "some ", "my ", "the ", "really ", "very ", "bad ", "terrible ", "severe "}

// a captured phrase starting with one of these is not a complaint, as in
// "i have to go" or "i have no idea".
var nonComplaintPrefixes = []string{"to ", "been ", "no ", "nothing", "not ", "a question", "question", "a doubt", "a query", "time"}

// a captured phrase mentioning one of these is an administrative request.
var adminWords = []string{"appointment", "booking", "book", "schedule", "call", "slot"}

const (
	maxSymptomWords = 4
	minSymptomLen   = 4
	maxSymptomLen   = 49
)

func findComplaintPhrase(_ context.Context, in Input, _ knowledge.Base) []Finding {
	m := complaintPattern.FindStringSubmatchIndex(in.Raw)
	if m == nil {
		return nil
	}
	phrase := strings.Join(words(in.Raw[m[2]:m[3]]), " ")
	for _, cut := range []string{"and", "since", "for", "from", "because", "so", "but"} {
		fields := strings.Fields(phrase)
		for i, f := range fields {
			if f == cut {
				phrase = strings.Join(fields[:i], " ")
				break
			}
		}
	}
	for trimmed := true; trimmed; {
		trimmed = false
		for _, a := range leadingArticles {
			if strings.HasPrefix(phrase, a) {
				phrase = strings.TrimPrefix(phrase, a)
				trimmed = true
			}
		}
	}
	phrase = limitWords(phrase, maxSymptomWords)
	if !plausibleComplaint(phrase) {
		return nil
	}
	for _, p := range nonComplaintPrefixes {
		if strings.HasPrefix(phrase, p) {
			return nil
		}
	}
	if ContainsAny(phrase, adminWords) {
		return nil
	}
	return []Finding{{Symptom: phrase, Department: knowledge.GuessDepartment(phrase), Position: m[2]}}
}

// complaintTerms signal a bodily complaint, narrower than medicalTerms so that
// requests like "I want to book an appointment" are not taken as symptoms.
var complaintTerms = []string{
	"pain", "ache", "fever", "cough", "cold", "headache", "stomach", "injury",
	"bleeding", "symptom", "sore", "hurt", "swelling", "swollen", "infection",
	"rash", "itch", "vomit", "nausea", "dizzy", "cramp", "burning", "lump",
}

var genericFiller = regexp.MustCompile(`\b(?:i have|i'm having|i feel|feeling|having|got|get|my|me)\b`)

func findGenericComplaint(_ context.Context, in Input, _ knowledge.Base) []Finding {
	hit := false
	for _, term := range complaintTerms {
		if strings.Contains(in.Text, term) {
			hit = true
			break
		}
	}
	if !hit || IsAcknowledgement(in.Text) {
		return nil
	}
	for _, w := range []string{" book", " appointment", " schedule"} {
		if strings.Contains(in.Text, w) {
			return nil
		}
	}
	phrase := limitWords(genericFiller.ReplaceAllString(in.Text, " "), maxSymptomWords)
	if !plausibleComplaint(phrase) {
		return nil
	}
	return []Finding{{Symptom: phrase, Department: knowledge.GuessDepartment(phrase)}}
}

func plausibleComplaint(phrase string) bool {
	if len(phrase) < minSymptomLen || len(phrase) > maxSymptomLen {
		return false
	}
	return !IsAcknowledgement(phrase)
}

func limitWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func sortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Position < fs[j].Position })
}
