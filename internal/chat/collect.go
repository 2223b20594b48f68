package chat

import (
	"fmt"
	"strings"
)

// fieldPrompts are the questions asked when entering each collecting state.
var fieldPrompts = map[State]string{
	StateCollectingName:   "May I have your name?",
	StateCollectingEmail:  "What's the best email address to reach you at?",
	StateCollectingPhone:  "And a phone number where we can reach you?",
	StateCollectingMoveIn: "When are you looking to move in?",
	StateCollectingBeds:   "How many bedrooms are you looking for? (Say \"studio\" for zero.)",
}

// fieldReprompts are shown when the turn's input failed validation.
var fieldReprompts = map[State]string{
	StateCollectingName:   "Sorry, I didn't catch your name. Could you share it again?",
	StateCollectingEmail:  "That doesn't look like a valid email address. Could you re-check it?",
	StateCollectingPhone:  "I need a 10-digit phone number, like (555) 123-4567. Could you try again?",
	StateCollectingMoveIn: "I couldn't read that as a date. Something like 2026-10-01 or \"next month\" works.",
	StateCollectingBeds:   "How many bedrooms? A number from 1 to 5, or \"studio\".",
}

// nextCollectState returns the collecting state for the first missing field,
// or ready_to_book when everything is present.
func nextCollectState(data *ProspectData) State {
	switch {
	case data.Name == "":
		return StateCollectingName
	case data.Email == "":
		return StateCollectingEmail
	case data.Phone == "":
		return StateCollectingPhone
	case data.MoveInDate == "":
		return StateCollectingMoveIn
	case data.BedsWanted == nil:
		return StateCollectingBeds
	default:
		return StateReadyToBook
	}
}

// collectField handles one turn in a collecting state. Multi-field
// extraction runs first so a prospect who answers "jane@x.com, 555-123-4567"
// while asked for email fills both; the targeted field then gets a
// last-chance direct parse. Returns the acknowledgment text and whether the
// targeted field was captured.
func (e *Engine) collectField(session *Session, text string) (string, bool) {
	data := &session.ProspectData
	extractFields(text, data, e.now())

	switch session.State {
	case StateCollectingName:
		if data.Name == "" {
			candidate := strings.TrimSpace(text)
			if ValidName(candidate) && looksLikeNameOnly(candidate) {
				data.Name = candidate
			}
		}
		if data.Name != "" {
			return fmt.Sprintf("Nice to meet you, %s!", data.Name), true
		}
	case StateCollectingEmail:
		if data.Email == "" && ValidEmail(strings.TrimSpace(text)) {
			data.Email = strings.TrimSpace(text)
		}
		if data.Email != "" {
			return "Got it.", true
		}
	case StateCollectingPhone:
		if data.Phone == "" {
			if normalized, ok := NormalizePhone(text); ok {
				data.Phone = normalized
			}
		}
		if data.Phone != "" {
			return fmt.Sprintf("Great, I have %s on file.", data.Phone), true
		}
	case StateCollectingMoveIn:
		if data.MoveInDate == "" {
			if parsed, ok := parseMoveInDate(text, e.now()); ok {
				data.MoveInDate = parsed
			} else if s := strings.TrimSpace(text); len(s) >= 3 {
				// Free-form timing like "once my lease wraps up" is kept
				// verbatim for the leasing office to resolve.
				data.MoveInDate = s
			}
		}
		if data.MoveInDate != "" {
			return fmt.Sprintf("Move-in around %s, noted.", data.MoveInDate), true
		}
	case StateCollectingBeds:
		// Answers here may replace an earlier count, so the prospect can
		// switch layouts when their first choice has nothing open.
		if n, ok := extractBeds(text); ok {
			data.SetBeds(n)
		} else if m := bedsDigitRE.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
			data.SetBeds(int(m[1][0] - '0'))
		}
		if data.BedsWanted != nil {
			if *data.BedsWanted == 0 {
				return "A studio, perfect.", true
			}
			return fmt.Sprintf("%d bedrooms, perfect.", *data.BedsWanted), true
		}
	}
	return "", false
}

// advancePrompt moves the session to the next collecting state and returns
// the question for it, or an empty string when data is complete.
func advancePrompt(session *Session) string {
	next := nextCollectState(&session.ProspectData)
	session.State = next
	if prompt, ok := fieldPrompts[next]; ok {
		return prompt
	}
	return ""
}
