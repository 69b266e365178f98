package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	namePattern = regexp.MustCompile(`(?i)\b(?:my name is|my name's|i am|i'm|call me|this is|name is)\s+([a-z][a-z\s]{1,29})`)
	agePattern  = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:years|yrs|year|yo)?\b`)
	letterWords = regexp.MustCompile(`^[a-z][a-z' ]*$`)
)

// words that end a captured name, e.g. "ravi kumar and i am 30".
var nameStopWords = map[string]struct{}{
	"and": {}, "i": {}, "my": {}, "age": {}, "aged": {}, "years": {}, "from": {},
	"calling": {}, "here": {}, "speaking": {}, "but": {}, "with": {}, "please": {},
}

// leading words that show "i am ..." is not an introduction.
var notAName = map[string]struct{}{
	"having": {}, "feeling": {}, "suffering": {}, "experiencing": {}, "not": {},
	"fine": {}, "good": {}, "okay": {}, "ok": {}, "looking": {}, "calling": {},
	"available": {}, "free": {}, "sorry": {}, "sure": {}, "a": {}, "an": {},
	"the": {}, "in": {}, "at": {}, "going": {}, "trying": {}, "interested": {},
	"here": {}, "very": {}, "so": {}, "just": {},
}

const maxNameWords = 3

// ExtractName pulls a caller's name out of an introduction such as
// "my name is Ravi Kumar", or accepts a short bare reply as the name.
func ExtractName(msg string) (string, bool) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", false
	}
	if m := namePattern.FindStringSubmatch(msg); m != nil {
		if name, ok := cleanIntroducedName(m[1]); ok {
			return name, true
		}
		return "", false
	}

	ws := words(msg)
	if len(ws) == 0 || len(ws) > maxNameWords || len(msg) >= 30 {
		return "", false
	}
	joined := strings.Join(ws, " ")
	if !letterWords.MatchString(joined) || ContainsMedicalTerm(joined) || IsAcknowledgement(joined) {
		return "", false
	}
	if _, bad := notAName[ws[0]]; bad {
		return "", false
	}
	return titleCase(joined), true
}

func cleanIntroducedName(raw string) (string, bool) {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(raw)) {
		if _, stop := nameStopWords[w]; stop {
			break
		}
		kept = append(kept, w)
		if len(kept) == maxNameWords {
			break
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	if _, bad := notAName[kept[0]]; bad {
		return "", false
	}
	name := strings.Join(kept, " ")
	if ContainsMedicalTerm(name) || IsAcknowledgement(name) {
		return "", false
	}
	return titleCase(name), true
}

const (
	minAge = 2
	maxAge = 119
)

// ExtractAge returns the first number in msg when it is a plausible age.
// Only 2 through 119 are accepted.
func ExtractAge(msg string) (int, bool) {
	m := agePattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	age, err := strconv.Atoi(m[1])
	if err != nil || age < minAge || age > maxAge {
		return 0, false
	}
	return age, true
}
