package chat

import (
	"regexp"
	"strings"
	"time"
)

// State tracks where a conversation sits in the lead-qualification flow.
type State string

const (
	StateGreeting         State = "greeting"
	StateCollectingName   State = "collecting_name"
	StateCollectingEmail  State = "collecting_email"
	StateCollectingPhone  State = "collecting_phone"
	StateCollectingMoveIn State = "collecting_move_in"
	StateCollectingBeds   State = "collecting_beds"
	StateReadyToBook      State = "ready_to_book"
	StateBookingConfirmed State = "booking_confirmed"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// maxTrackedIntents bounds the rolling intent list in AIContext.
const maxTrackedIntents = 5

var (
	emailRE       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRE        = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)
	nonDigitRE    = regexp.MustCompile(`\D`)
	isoDateRE     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	unitMentionRE = regexp.MustCompile(`(?i)unit\s+([a-z]\d{2,4})\b`)
	bedsDigitRE   = regexp.MustCompile(`\b([1-5])\b`)
	bedsPhraseRE  = regexp.MustCompile(`(?i)\b([1-5])\s*(bed|bedroom)`)
	namePrefixRE  = regexp.MustCompile(`(?i)(?:my\s+name\s+is\s+|i\s+am\s+|i'm\s+|this\s+is\s+|call\s+me\s+)([a-zA-Z\s\-'.]+)`)
	plainNameRE   = regexp.MustCompile(`^([a-zA-Z\s\-'.]+)$`)
	addUnitRE     = regexp.MustCompile(`(?i)add.*?unit\s+([a-z]\d{2,4}).*?to my selections`)
	removeUnitRE  = regexp.MustCompile(`(?i)remove.*?unit\s+([a-z]\d{2,4}).*?from my selections`)
	bookUnitRE    = regexp.MustCompile(`(?i)(?:book|want|select|choose).*?unit\s+([a-z]\d{2,4})`)
	anyDigitRE    = regexp.MustCompile(`\d`)
	fourDigitYrRE = regexp.MustCompile(`\d{4}`)
)

// ProspectData is the mutable record of everything collected about a lead.
// Fields fill in incrementally, one turn at a time; writes never overwrite an
// already-populated field.
type ProspectData struct {
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	MoveInDate      string   `json:"move_in_date,omitempty"`
	BedsWanted      *int     `json:"beds_wanted,omitempty"`
	UnitID          string   `json:"unit_id,omitempty"`
	SelectedUnits   []string `json:"selected_units,omitempty"`
	PropertyAddress string   `json:"property_address,omitempty"`
}

// IsComplete reports whether every field required for booking is present.
// A beds count of zero (studio) counts as set; only nil means unset.
func (d *ProspectData) IsComplete() bool {
	return d.Name != "" &&
		d.Email != "" &&
		d.Phone != "" &&
		d.MoveInDate != "" &&
		d.BedsWanted != nil
}

// MissingFields lists the required fields still outstanding, in prompt order.
func (d *ProspectData) MissingFields() []string {
	var missing []string
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.Email == "" {
		missing = append(missing, "email")
	}
	if d.Phone == "" {
		missing = append(missing, "phone")
	}
	if d.MoveInDate == "" {
		missing = append(missing, "move-in date")
	}
	if d.BedsWanted == nil {
		missing = append(missing, "number of bedrooms")
	}
	return missing
}

// SetBeds records the bedroom count (0 means studio).
func (d *ProspectData) SetBeds(n int) {
	d.BedsWanted = &n
}

// HasSelectedUnit reports whether unitID is already in the selection list.
func (d *ProspectData) HasSelectedUnit(unitID string) bool {
	for _, id := range d.SelectedUnits {
		if id == unitID {
			return true
		}
	}
	return false
}

// AddSelectedUnit appends unitID preserving insertion order; duplicates are
// ignored.
func (d *ProspectData) AddSelectedUnit(unitID string) {
	if !d.HasSelectedUnit(unitID) {
		d.SelectedUnits = append(d.SelectedUnits, unitID)
	}
}

// RemoveSelectedUnit drops unitID from the selection list if present.
func (d *ProspectData) RemoveSelectedUnit(unitID string) bool {
	for i, id := range d.SelectedUnits {
		if id == unitID {
			d.SelectedUnits = append(d.SelectedUnits[:i], d.SelectedUnits[i+1:]...)
			return true
		}
	}
	return false
}

// NormalizePhone reduces any 10-digit (or 1-prefixed 11-digit) input to the
// canonical "(XXX) XXX-XXXX" display form. Normalization is idempotent.
func NormalizePhone(raw string) (string, bool) {
	digits := nonDigitRE.ReplaceAllString(raw, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:], true
}

// ValidEmail reports whether raw matches the local@domain.tld pattern.
func ValidEmail(raw string) bool {
	return emailRE.MatchString(raw)
}

// ValidName reports whether raw looks like a person's name: at least two
// characters of letters, spaces, hyphens, apostrophes, or periods.
func ValidName(raw string) bool {
	raw = strings.TrimSpace(raw)
	return len(raw) >= 2 && nameRE.MatchString(raw)
}

// Message is one turn of the conversation, append-only and never mutated.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AIContext carries advisory conversational state: recent intents, extracted
// preferences, and the last generated reply. It never drives booking
// decisions.
type AIContext struct {
	ConversationSummary string            `json:"conversation_summary,omitempty"`
	UserPreferences     map[string]string `json:"user_preferences,omitempty"`
	LastAIResponse      string            `json:"last_ai_response,omitempty"`
	ExtractedIntents    []string          `json:"extracted_intents,omitempty"`
}

// TrackIntent appends an intent label, keeping only the most recent few.
func (c *AIContext) TrackIntent(intent string) {
	c.ExtractedIntents = append(c.ExtractedIntents, intent)
	if len(c.ExtractedIntents) > maxTrackedIntents {
		c.ExtractedIntents = c.ExtractedIntents[len(c.ExtractedIntents)-maxTrackedIntents:]
	}
}

// SetPreference records a key/value preference, last write wins.
func (c *AIContext) SetPreference(key, value string) {
	if c.UserPreferences == nil {
		c.UserPreferences = make(map[string]string)
	}
	c.UserPreferences[key] = value
}

// Session is the aggregate root for one conversation with one prospect.
type Session struct {
	SessionID    string       `json:"session_id"`
	State        State        `json:"state"`
	ProspectData ProspectData `json:"prospect_data"`
	Messages     []Message    `json:"messages"`
	AIContext    AIContext    `json:"ai_context"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewSession creates an empty session in the greeting state.
func NewSession(sessionID, propertyAddress string) *Session {
	now := time.Now().UTC()
	return &Session{
		SessionID: sessionID,
		State:     StateGreeting,
		ProspectData: ProspectData{
			PropertyAddress: propertyAddress,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the history.
func (s *Session) Append(sender, text string) {
	s.Messages = append(s.Messages, Message{
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
}

// RecentMessages returns up to limit most recent messages in order.
func (s *Session) RecentMessages(limit int) []Message {
	if limit <= 0 || len(s.Messages) <= limit {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-limit:]
}
