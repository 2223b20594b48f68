package chat

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// relativeDatePhrases are stored verbatim as the move-in date; the leasing
// office resolves them with the prospect at tour time.
var relativeDatePhrases = []string{
	"asap", "as soon as possible", "immediately", "right away",
	"next week", "next month", "this month", "this week",
	"soon", "flexible", "anytime", "whenever",
	"beginning of", "end of", "early", "mid", "late",
	"spring", "summer", "fall", "autumn", "winter",
}

// parseMoveInDate interprets a candidate move-in date. Exact ISO dates pass
// through unchanged; other absolute formats normalize to YYYY-MM-DD with
// US month-first reading; recognizable relative phrases are kept verbatim.
// The bool result reports whether any date was understood at all.
func parseMoveInDate(raw string, now time.Time) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if isoDateRE.MatchString(s) {
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return s, true
		}
		return "", false
	}
	if looksRelativeDate(s) {
		return s, true
	}
	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(true))
	if err != nil || t.Year() <= 1 {
		// "March 15" style inputs carry no year and either fail or land in
		// year zero; retry with the current year attached.
		t, err = dateparse.ParseAny(fmt.Sprintf("%s, %d", s, now.Year()), dateparse.PreferMonthFirst(true))
		if err != nil {
			return "", false
		}
	}
	// Inputs without a year parse into the current year; a move-in date in
	// the past means the prospect meant next year.
	if !fourDigitYrRE.MatchString(s) && t.Before(now) {
		t = t.AddDate(1, 0, 0)
	}
	return t.Format("2006-01-02"), true
}

// looksRelativeDate reports whether s is a relative timing phrase worth
// keeping verbatim.
func looksRelativeDate(s string) bool {
	if len(s) < 3 {
		return false
	}
	lower := strings.ToLower(s)
	for _, p := range relativeDatePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var monthNameRE = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\b`)

// looksLikeDate reports whether text plausibly contains a date at all, used
// to decide whether a free-form token should be tried as a move-in date.
// A bare month name or a bare 4-digit year counts.
func looksLikeDate(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	if looksRelativeDate(lower) {
		return true
	}
	if monthNameRE.MatchString(lower) {
		return true
	}
	if fourDigitYrRE.MatchString(lower) {
		return true
	}
	if anyDigitRE.MatchString(lower) {
		return strings.Contains(lower, "/") || strings.Contains(lower, "-")
	}
	return false
}
