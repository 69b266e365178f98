package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	clockSlotPattern  = regexp.MustCompile(`(?i)\b(9|10|11|2|3|4|5)(?::([0-5]\d))?\s*(am|pm|a\.m\.?|p\.m\.?)(?:[^a-z]|$)`)
	onHourPattern     = regexp.MustCompile(`(?i)\b(9|10|11|2|3|4|5):00\b`)
	oclockPattern     = regexp.MustCompile(`(?i)\b(9|10|11|2|3|4|5)\s*(?:o'?\s?clock|clock)`)
	partOfDayPattern  = regexp.MustCompile(`(?i)\b(morning|afternoon|evening)\b`)
	looseClockPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::([0-5]\d))?\s*(am|pm|a\.m\.?|p\.m\.?)?(?:\s|$|[,.!?])`)
)

// ExtractTimeSlot recognizes an appointment time and returns it in
// canonical "H:MM AM" form, or a capitalized part of day.
func ExtractTimeSlot(msg string) (string, bool) {
	if m := clockSlotPattern.FindStringSubmatch(msg); m != nil {
		return canonicalTime(m[1], m[2], m[3])
	}
	if m := onHourPattern.FindStringSubmatch(msg); m != nil {
		return canonicalTime(m[1], "00", "")
	}
	if m := oclockPattern.FindStringSubmatch(msg); m != nil {
		return canonicalTime(m[1], "00", "")
	}
	if m := partOfDayPattern.FindStringSubmatch(msg); m != nil {
		return titleCase(strings.ToLower(m[1])), true
	}
	if m := looseClockPattern.FindStringSubmatch(msg + " "); m != nil {
		return canonicalTime(m[1], m[2], m[3])
	}
	return "", false
}

// canonicalTime normalizes hour/minute/meridiem pieces. Without a marker,
// hours 7 through 11 are read as morning and everything else as afternoon,
// matching clinic opening hours. 24-hour values are folded to 12-hour.
func canonicalTime(hourStr, minStr, meridiem string) (string, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 23 {
		return "", false
	}
	if minStr == "" {
		minStr = "00"
	}
	period := strings.ToUpper(strings.ReplaceAll(meridiem, ".", ""))
	switch {
	case hour > 12:
		hour -= 12
		period = "PM"
	case period == "":
		if hour >= 7 && hour <= 11 {
			period = "AM"
		} else {
			period = "PM"
		}
	}
	return fmt.Sprintf("%d:%s %s", hour, minStr, period), true
}
