package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leaseline/lease-concierge/internal/inventory"
	"github.com/leaseline/lease-concierge/internal/notify"
	"github.com/leaseline/lease-concierge/pkg/logging"
)

type capturingSender struct {
	fail bool
	sent []notify.EmailMessage
}

func (c *capturingSender) Send(_ context.Context, msg notify.EmailMessage) error {
	if c.fail {
		return errors.New("delivery refused")
	}
	c.sent = append(c.sent, msg)
	return nil
}

func newTestEngine(t *testing.T, sender notify.EmailSender, opts ...inventory.Option) *Engine {
	t.Helper()
	logger := logging.Default()
	inv := inventory.NewStore(logger, append([]inventory.Option{inventory.WithUnavailabilityRate(0)}, opts...)...)
	notifier := notify.NewService(sender, 1, time.Millisecond, logger)
	engine := NewEngine(NewMemorySessionStore(), inv, notifier, nil, nil, EngineConfig{
		PropertyName:    "Maple Court",
		PropertyAddress: "123 Main St, Anytown, ST 12345",
		OfficePhone:     "(555) 010-2000",
	}, logger)
	engine.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return engine
}

func turn(t *testing.T, e *Engine, sessionID, text string) *TurnResult {
	t.Helper()
	result, err := e.ProcessMessage(context.Background(), sessionID, text)
	if err != nil {
		t.Fatalf("ProcessMessage(%q): %v", text, err)
	}
	return result
}

func TestQualificationFlowStepByStep(t *testing.T) {
	sender := &capturingSender{}
	e := newTestEngine(t, sender)
	const sid = "flow-1"

	r := turn(t, e, sid, "hi")
	if r.State != StateCollectingName {
		t.Fatalf("after greeting, state = %s", r.State)
	}
	if !strings.Contains(r.Reply, "Maple Court") {
		t.Errorf("greeting should name the property, got %q", r.Reply)
	}

	r = turn(t, e, sid, "Kausha")
	if r.State != StateCollectingEmail {
		t.Fatalf("after name, state = %s", r.State)
	}

	r = turn(t, e, sid, "kausha@example.com")
	if r.State != StateCollectingPhone {
		t.Fatalf("after email, state = %s", r.State)
	}

	r = turn(t, e, sid, "7272727272")
	if r.State != StateCollectingMoveIn {
		t.Fatalf("after phone, state = %s", r.State)
	}
	if !strings.Contains(r.Reply, "(727) 272-7272") {
		t.Errorf("phone ack should echo normalized number, got %q", r.Reply)
	}

	r = turn(t, e, sid, "next month")
	if r.State != StateCollectingBeds {
		t.Fatalf("after move-in, state = %s", r.State)
	}

	r = turn(t, e, sid, "2 bedrooms")
	if r.State != StateReadyToBook {
		t.Fatalf("after beds, state = %s", r.State)
	}
	if !strings.Contains(r.Reply, "book") {
		t.Errorf("offer should propose booking, got %q", r.Reply)
	}

	r = turn(t, e, sid, "yes")
	if r.State != StateBookingConfirmed {
		t.Fatalf("after confirmation, state = %s", r.State)
	}
	if !strings.Contains(r.Reply, "LC-") {
		t.Errorf("booking reply missing confirmation number: %q", r.Reply)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if sender.sent[0].To != "kausha@example.com" {
		t.Errorf("email to %q", sender.sent[0].To)
	}
}

func TestSingleMessageAutoBooks(t *testing.T) {
	sender := &capturingSender{}
	e := newTestEngine(t, sender)

	r := turn(t, e, "one-shot", "My name is Kausha, patermanav45@gmail.com 7272727272, Next month, looking for a 2 bedroom")
	if r.State != StateBookingConfirmed {
		t.Fatalf("state = %s, want booking_confirmed", r.State)
	}
	if !strings.Contains(r.Reply, "LC-") {
		t.Errorf("reply missing confirmation number: %q", r.Reply)
	}

	session, err := e.GetSession(context.Background(), "one-shot")
	if err != nil || session == nil {
		t.Fatalf("session lookup: %v", err)
	}
	if session.ProspectData.MoveInDate != "Next month" {
		t.Errorf("move-in = %q, want verbatim phrase", session.ProspectData.MoveInDate)
	}
	if session.ProspectData.Name != "Kausha" {
		t.Errorf("name = %q", session.ProspectData.Name)
	}
}

func TestBookingSurvivesEmailFailure(t *testing.T) {
	sender := &capturingSender{fail: true}
	e := newTestEngine(t, sender)

	r := turn(t, e, "email-down", "I'm Jordan Lee, jordan@example.com, 555-123-4567, 2026-10-01, 1 bedroom")
	if r.State != StateBookingConfirmed {
		t.Fatalf("state = %s, booking must stand despite email failure", r.State)
	}
	if !strings.Contains(r.Reply, "LC-") {
		t.Errorf("reply missing confirmation number: %q", r.Reply)
	}
	if !strings.Contains(strings.ToLower(r.Reply), "email") {
		t.Errorf("reply should mention the email problem: %q", r.Reply)
	}
}

func TestUnitSelectionCommandsDoNotChangeState(t *testing.T) {
	e := newTestEngine(t, &capturingSender{})
	const sid = "selections"

	turn(t, e, sid, "hi")
	turn(t, e, sid, "Kausha")
	r := turn(t, e, sid, "add unit B301 to my selections")
	if r.State != StateCollectingEmail {
		t.Fatalf("state = %s, selection commands must not disturb collection", r.State)
	}
	if !strings.Contains(r.Reply, "B301") {
		t.Errorf("reply = %q", r.Reply)
	}

	r = turn(t, e, sid, "show my selections")
	if r.State != StateCollectingEmail {
		t.Fatalf("state = %s", r.State)
	}
	if !strings.Contains(r.Reply, "B301") {
		t.Errorf("selections listing missing unit: %q", r.Reply)
	}

	r = turn(t, e, sid, "remove unit B301 from my selections")
	if !strings.Contains(r.Reply, "Removed") {
		t.Errorf("reply = %q", r.Reply)
	}
}

func TestMultiUnitBooking(t *testing.T) {
	sender := &capturingSender{}
	e := newTestEngine(t, sender)
	const sid = "multi"

	turn(t, e, sid, "I'm Jordan Lee, jordan@example.com, 555-123-4567, 2026-10-01")
	turn(t, e, sid, "2 bedrooms")
	turn(t, e, sid, "add unit B301 to my selections")
	turn(t, e, sid, "add unit A101 to my selections")

	r := turn(t, e, sid, "book all my selections")
	if r.State != StateBookingConfirmed {
		t.Fatalf("state = %s", r.State)
	}
	if !strings.Contains(r.Reply, "2 units") {
		t.Errorf("reply should cover both units: %q", r.Reply)
	}
	if len(sender.sent) == 0 || !strings.Contains(sender.sent[len(sender.sent)-1].Subject, "2 Units") {
		t.Errorf("group confirmation email not sent")
	}
}

func TestMultiUnitBookingDropsUnavailable(t *testing.T) {
	sender := &capturingSender{}
	e := newTestEngine(t, sender)
	const sid = "multi-drop"

	turn(t, e, sid, "I'm Jordan Lee, jordan@example.com, 555-123-4567, 2026-10-01")
	turn(t, e, sid, "2 bedrooms")
	turn(t, e, sid, "add unit B301 to my selections")
	turn(t, e, sid, "add unit B402 to my selections")
	turn(t, e, sid, "add unit B503 to my selections")

	// B402 gets taken between selection and booking.
	if _, ok := e.inventory.ReserveIfAvailable("B402"); !ok {
		t.Fatal("setup: could not reserve B402")
	}

	r := turn(t, e, sid, "book all my selections")
	if r.State != StateBookingConfirmed {
		t.Fatalf("state = %s", r.State)
	}
	if !strings.Contains(r.Reply, "2 units") {
		t.Errorf("reply should cover the surviving units: %q", r.Reply)
	}
	if !strings.Contains(r.Reply, "B402") {
		t.Errorf("reply should report the dropped unit: %q", r.Reply)
	}

	session, err := e.GetSession(context.Background(), sid)
	if err != nil || session == nil {
		t.Fatalf("session lookup: %v", err)
	}
	if len(session.ProspectData.SelectedUnits) != 0 {
		t.Errorf("selections not cleared: %v", session.ProspectData.SelectedUnits)
	}
}

func TestBookUnitPhraseWithTwoUnitsBooksBoth(t *testing.T) {
	sender := &capturingSender{}
	e := newTestEngine(t, sender)
	const sid = "two-units"

	turn(t, e, sid, "I'm Jordan Lee, jordan@example.com, 555-123-4567, 2026-10-01")
	turn(t, e, sid, "2 bedrooms")

	r := turn(t, e, sid, "book unit A101 and unit B301")
	if r.State != StateBookingConfirmed {
		t.Fatalf("state = %s", r.State)
	}
	if !strings.Contains(r.Reply, "2 units") {
		t.Errorf("reply should cover both units: %q", r.Reply)
	}
	if len(sender.sent) == 0 || !strings.Contains(sender.sent[len(sender.sent)-1].Subject, "2 Units") {
		t.Errorf("group confirmation email not sent")
	}
}

func TestNoAvailabilityKeepsSessionBookable(t *testing.T) {
	e := newTestEngine(t, &capturingSender{}, inventory.WithUnits([]inventory.Unit{
		{UnitID: "Z901", Beds: 3, Baths: 2, Sqft: 1400, Rent: 2800, Available: true},
	}))

	r := turn(t, e, "no-fit", "I'm Jordan Lee, jordan@example.com, 555-123-4567, 2026-10-01, 2 bedroom")
	if r.State != StateReadyToBook {
		t.Fatalf("state = %s, want ready_to_book after availability miss", r.State)
	}
	if !strings.Contains(strings.ToLower(r.Reply), "sorry") {
		t.Errorf("reply = %q", r.Reply)
	}
}

func TestBedsWithNoAvailabilityAllowsDifferentCount(t *testing.T) {
	e := newTestEngine(t, &capturingSender{}, inventory.WithUnits([]inventory.Unit{
		{UnitID: "Z901", Beds: 3, Baths: 2, Sqft: 1400, Rent: 2800, Available: true},
	}))
	const sid = "switch-beds"

	turn(t, e, sid, "hi")
	turn(t, e, sid, "Kausha")
	turn(t, e, sid, "kausha@example.com")
	turn(t, e, sid, "7272727272")
	turn(t, e, sid, "next month")

	r := turn(t, e, sid, "2")
	if r.State != StateCollectingBeds {
		t.Fatalf("state = %s, want collecting_beds kept when nothing is open", r.State)
	}
	if !strings.Contains(r.Reply, "2-bedroom") {
		t.Errorf("reply = %q", r.Reply)
	}

	r = turn(t, e, sid, "3")
	if r.State != StateReadyToBook {
		t.Fatalf("state = %s, a new count must replace the old one", r.State)
	}
	session, err := e.GetSession(context.Background(), sid)
	if err != nil || session == nil {
		t.Fatalf("session lookup: %v", err)
	}
	if session.ProspectData.BedsWanted == nil || *session.ProspectData.BedsWanted != 3 {
		t.Errorf("beds = %v, want 3", session.ProspectData.BedsWanted)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	e := newTestEngine(t, &capturingSender{})

	turn(t, e, "a", "My name is Kausha")
	r := turn(t, e, "b", "hi")
	session, err := e.GetSession(context.Background(), "b")
	if err != nil || session == nil {
		t.Fatalf("session lookup: %v", err)
	}
	if session.ProspectData.Name != "" {
		t.Errorf("session b picked up name %q from session a", session.ProspectData.Name)
	}
	_ = r
}

func TestDeleteSession(t *testing.T) {
	e := newTestEngine(t, &capturingSender{})
	turn(t, e, "gone", "hi")

	if err := e.DeleteSession(context.Background(), "gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	session, err := e.GetSession(context.Background(), "gone")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if session != nil {
		t.Error("session still present after delete")
	}
}
