package chat

import (
	"testing"
	"time"
)

func TestParseMoveInDate(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-10-01", "2026-10-01", true},
		{"October 15, 2026", "2026-10-15", true},
		{"10/15/2026", "2026-10-15", true},
		// Month-first reading: 3/4 is March 4th, not April 3rd.
		{"3/4/2027", "2027-03-04", true},
		// No year and already past this year rolls to next year.
		{"March 15", "2027-03-15", true},
		{"next month", "next month", true},
		{"ASAP", "ASAP", true},
		{"early January", "early January", true},
		{"", "", false},
		{"xy", "", false},
		{"2026-13-45", "", false},
	}
	for _, tt := range tests {
		got, ok := parseMoveInDate(tt.in, now)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseMoveInDate(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLooksLikeDate(t *testing.T) {
	// Bare month names and bare 4-digit years count as date-like.
	yes := []string{"next month", "October 15", "10/15/2026", "2026-10-01", "asap", "August", "2027"}
	no := []string{"Kausha", "hello there", "two bedrooms please", "Maria"}

	for _, s := range yes {
		if !looksLikeDate(s) {
			t.Errorf("looksLikeDate(%q) = false, want true", s)
		}
	}
	for _, s := range no {
		if looksLikeDate(s) {
			t.Errorf("looksLikeDate(%q) = true, want false", s)
		}
	}
}
