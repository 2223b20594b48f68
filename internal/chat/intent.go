package chat

import "strings"

// Intent is the closed set of recognized message intents. Classification is
// purely lexical; anything unrecognized falls through to IntentGeneral and is
// handled by extraction plus the assistant reply path.
type Intent int

const (
	IntentGeneral Intent = iota
	IntentGreeting
	IntentBooking
	IntentAddUnit
	IntentRemoveUnit
	IntentShowSelections
	IntentClearSelections
	IntentBookUnit
	IntentConfirmMulti
)

var bookingKeywords = []string{
	"book", "tour", "visit", "schedule", "reserve",
	"appointment", "see the place", "check out", "interested",
	"yes", "sure", "okay", "sounds good", "let's do it", "confirm",
}

var greetingWords = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
}

// classifyIntent maps a raw user message onto the intent set. Unit-selection
// commands are matched before anything else so "add unit B301 to my
// selections" is never mistaken for a booking request.
func classifyIntent(text string) (Intent, string) {
	lower := strings.ToLower(strings.TrimSpace(text))

	if m := addUnitRE.FindStringSubmatch(lower); m != nil {
		return IntentAddUnit, strings.ToUpper(m[1])
	}
	if m := removeUnitRE.FindStringSubmatch(lower); m != nil {
		return IntentRemoveUnit, strings.ToUpper(m[1])
	}
	if strings.Contains(lower, "show my selections") || strings.Contains(lower, "view my selections") {
		return IntentShowSelections, ""
	}
	if strings.Contains(lower, "clear my selections") || strings.Contains(lower, "clear all selections") {
		return IntentClearSelections, ""
	}
	if strings.Contains(lower, "book all") || strings.Contains(lower, "book my selections") ||
		strings.Contains(lower, "book selected") {
		return IntentConfirmMulti, ""
	}
	if m := bookUnitRE.FindStringSubmatch(lower); m != nil {
		return IntentBookUnit, strings.ToUpper(m[1])
	}
	if isBookingIntent(lower) {
		return IntentBooking, ""
	}
	if isGreeting(lower) {
		return IntentGreeting, ""
	}
	return IntentGeneral, ""
}

// mentionedUnitIDs returns every distinct unit id named as "unit X" in the
// message, in order of appearance.
func mentionedUnitIDs(text string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, m := range unitMentionRE.FindAllStringSubmatch(text, -1) {
		id := strings.ToUpper(m[1])
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func isBookingIntent(lower string) bool {
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isGreeting(lower string) bool {
	for _, w := range greetingWords {
		if lower == w || strings.HasPrefix(lower, w+" ") || strings.HasPrefix(lower, w+"!") ||
			strings.HasPrefix(lower, w+",") {
			return true
		}
	}
	return false
}
