package chat

import (
	"regexp"
	"strings"
	"time"
)

var (
	anyEmailRE = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	anyPhoneRE = regexp.MustCompile(`(?:\+?1[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	studioRE   = regexp.MustCompile(`(?i)\bstudio\b`)
)

// extractFields scans a free-form message for any prospect fields it can
// find and fills them into data, first write wins. It reports whether any
// field changed.
//
// Extraction runs in two passes: unambiguous tokens first (email, phone),
// then loosely-shaped ones (name, move-in date, bedrooms) over the text with
// the unambiguous matches removed, so a phone number is never mistaken for a
// date and a date phrase is never taken as a name.
func extractFields(text string, data *ProspectData, now time.Time) bool {
	changed := false
	remainder := text

	if data.Email == "" {
		if m := anyEmailRE.FindString(remainder); m != "" {
			data.Email = m
			changed = true
		}
	}
	remainder = anyEmailRE.ReplaceAllString(remainder, " ")

	if data.Phone == "" {
		if m := anyPhoneRE.FindString(remainder); m != "" {
			if normalized, ok := NormalizePhone(m); ok {
				data.Phone = normalized
				changed = true
			}
		}
	}
	remainder = anyPhoneRE.ReplaceAllString(remainder, " ")

	if data.BedsWanted == nil {
		if n, ok := extractBeds(remainder); ok {
			data.SetBeds(n)
			changed = true
		}
	}

	segments := splitSegments(remainder)

	if data.Name == "" {
		if name, ok := extractName(remainder, segments); ok {
			data.Name = name
			changed = true
		}
	}

	if data.MoveInDate == "" {
		for _, seg := range segments {
			if !looksLikeDate(seg) {
				continue
			}
			if parsed, ok := parseMoveInDate(seg, now); ok {
				data.MoveInDate = parsed
			} else if s := strings.TrimSpace(seg); len(s) >= 3 {
				// Date-like but unparseable, keep the phrase as given.
				data.MoveInDate = s
			} else {
				continue
			}
			changed = true
			break
		}
	}

	return changed
}

// splitSegments breaks a message on commas, semicolons, and newlines into
// trimmed non-empty chunks.
func splitSegments(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractName finds a name either via an explicit prefix ("my name is ...")
// or a segment that is nothing but a plausible name.
func extractName(text string, segments []string) (string, bool) {
	if m := namePrefixRE.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		// The prefix capture is greedy; keep only the first segment of it.
		if i := strings.IndexAny(candidate, ",;\n"); i >= 0 {
			candidate = strings.TrimSpace(candidate[:i])
		}
		if looksLikeNameOnly(candidate) {
			return candidate, true
		}
	}
	for _, seg := range segments {
		if looksLikeNameOnly(seg) {
			return seg, true
		}
	}
	return "", false
}

// looksLikeNameOnly guards against timing phrases and commands being taken
// as names: the segment must be short, all name characters, and contain no
// date vocabulary.
func looksLikeNameOnly(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 40 {
		return false
	}
	if !plainNameRE.MatchString(s) {
		return false
	}
	words := strings.Fields(s)
	if len(words) > 3 {
		return false
	}
	if looksLikeDate(s) {
		return false
	}
	lower := strings.ToLower(s)
	for _, stop := range []string{
		"next", "month", "week", "asap", "soon", "today", "tomorrow",
		"studio", "bed", "bedroom", "unit", "yes", "no", "okay", "sure",
		"hi", "hello", "hey", "thanks", "thank",
	} {
		for _, w := range strings.Fields(lower) {
			if w == stop {
				return false
			}
		}
	}
	return true
}

// extractBeds pulls a bedroom count out of text. "studio" means zero beds.
func extractBeds(text string) (int, bool) {
	if studioRE.MatchString(text) {
		return 0, true
	}
	if m := bedsPhraseRE.FindStringSubmatch(text); m != nil {
		return int(m[1][0] - '0'), true
	}
	return 0, false
}
