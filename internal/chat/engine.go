package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leaseline/lease-concierge/internal/inventory"
	"github.com/leaseline/lease-concierge/internal/notify"
	"github.com/leaseline/lease-concierge/internal/observability/metrics"
	"github.com/leaseline/lease-concierge/pkg/logging"
)

// SessionStore persists conversation sessions. Load returns (nil, nil) when
// no session exists for the id.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// TurnResult is the outcome of one processed chat turn.
type TurnResult struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	State     State  `json:"state"`
}

// Engine drives the qualification conversation: one ProcessMessage call per
// inbound message, fully synchronous. Turns for the same session serialize
// on a per-session lock; different sessions proceed concurrently.
type Engine struct {
	store     SessionStore
	inventory *inventory.Store
	notifier  *notify.Service
	llm       LLMClient
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger

	propertyName    string
	propertyAddress string
	officePhone     string

	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// EngineConfig carries the property identity baked into replies and emails.
type EngineConfig struct {
	PropertyName    string
	PropertyAddress string
	OfficePhone     string
}

// NewEngine wires the conversation engine. llm may be nil; the stub client
// is used in that case. metrics may be nil.
func NewEngine(store SessionStore, inv *inventory.Store, notifier *notify.Service, llm LLMClient, m *metrics.ChatMetrics, cfg EngineConfig, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	if llm == nil {
		llm = StubLLMClient{}
	}
	return &Engine{
		store:           store,
		inventory:       inv,
		notifier:        notifier,
		llm:             llm,
		metrics:         m,
		logger:          logger,
		propertyName:    cfg.PropertyName,
		propertyAddress: cfg.PropertyAddress,
		officePhone:     cfg.OfficePhone,
		now:             time.Now,
		locks:           make(map[string]*sync.Mutex),
	}
}

func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	return lock
}

// ProcessMessage handles one user message for the given session, creating
// the session on first contact, and persists the updated session before
// returning.
func (e *Engine) ProcessMessage(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if sessionID == "" {
		return nil, fmt.Errorf("chat: session id required")
	}
	if text == "" {
		return nil, fmt.Errorf("chat: message text required")
	}

	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	started := e.now()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("chat: load session %s: %w", sessionID, err)
	}
	if session == nil {
		session = NewSession(sessionID, e.propertyAddress)
		e.logger.Info("session created", "session_id", sessionID)
	}

	session.Append(SenderUser, text)
	reply := e.route(ctx, session, text)
	session.Append(SenderBot, reply)
	session.UpdatedAt = e.now().UTC()

	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("chat: save session %s: %w", sessionID, err)
	}

	e.metrics.ObserveTurn(string(session.State), e.now().Sub(started).Seconds())
	return &TurnResult{
		SessionID: sessionID,
		Reply:     reply,
		State:     session.State,
	}, nil
}

// route picks the handler for a turn. Handler order is load-bearing:
// unit-selection commands run before anything else so they never disturb
// field collection, then post-booking, then the active collecting state,
// then booking intent with complete data, and finally free-form extraction
// with an assistant reply.
func (e *Engine) route(ctx context.Context, session *Session, text string) string {
	intent, arg := classifyIntent(text)
	session.AIContext.TrackIntent(intentLabel(intent))

	switch intent {
	case IntentAddUnit:
		return e.handleAddUnit(session, arg)
	case IntentRemoveUnit:
		return e.handleRemoveUnit(session, arg)
	case IntentShowSelections:
		return e.handleShowSelections(session)
	case IntentClearSelections:
		session.ProspectData.SelectedUnits = nil
		return "Done, I've cleared your selections."
	case IntentConfirmMulti:
		return e.handleConfirmMulti(ctx, session)
	case IntentBookUnit:
		return e.handleBookUnit(ctx, session, arg, text)
	}

	if session.State == StateBookingConfirmed {
		return e.handlePostBooking(ctx, session)
	}

	if isCollecting(session.State) {
		ack, ok := e.collectField(session, text)
		if !ok {
			return fieldReprompts[session.State]
		}
		if session.ProspectData.IsComplete() {
			offer, found := e.readyToBookOffer(session)
			if found {
				session.State = StateReadyToBook
			} else {
				// Nothing open for that count; keep collecting so a
				// different number can replace it.
				session.State = StateCollectingBeds
			}
			return ack + " " + offer
		}
		return ack + " " + advancePrompt(session)
	}

	if intent == IntentBooking && session.ProspectData.IsComplete() {
		result, err := e.bookTour(ctx, session)
		return e.replyForBooking(session, result, err)
	}

	changed := extractFields(text, &session.ProspectData, e.now())
	if changed {
		if session.ProspectData.IsComplete() {
			// Everything needed arrived in one message; book without
			// another round trip.
			result, err := e.bookTour(ctx, session)
			return e.replyForBooking(session, result, err)
		}
		return "Thanks! " + advancePrompt(session)
	}

	if intent == IntentBooking {
		return "I'd love to get a tour on the books. " + advancePrompt(session)
	}

	if intent == IntentGreeting || session.State == StateGreeting {
		greeting := fmt.Sprintf(
			"Hi! Welcome to %s. I can answer questions about our apartments and get a tour scheduled for you.",
			e.propertyName)
		return greeting + " " + advancePrompt(session)
	}

	resp, err := e.llm.Complete(ctx, buildLLMRequest(e.propertyName, session))
	if err != nil {
		e.logger.Warn("assistant reply failed, using fallback",
			"session_id", session.SessionID, "error", err)
		return "Happy to help with that. " + advancePrompt(session)
	}
	session.AIContext.LastAIResponse = resp.Text
	return resp.Text
}

func isCollecting(s State) bool {
	switch s {
	case StateCollectingName, StateCollectingEmail, StateCollectingPhone,
		StateCollectingMoveIn, StateCollectingBeds:
		return true
	}
	return false
}

func intentLabel(i Intent) string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentBooking:
		return "booking"
	case IntentAddUnit:
		return "add_unit"
	case IntentRemoveUnit:
		return "remove_unit"
	case IntentShowSelections:
		return "show_selections"
	case IntentClearSelections:
		return "clear_selections"
	case IntentBookUnit:
		return "book_unit"
	case IntentConfirmMulti:
		return "confirm_multi"
	default:
		return "general"
	}
}

// readyToBookOffer quotes an available unit for the collected criteria. The
// bool result reports whether a unit could be offered.
func (e *Engine) readyToBookOffer(session *Session) (string, bool) {
	data := &session.ProspectData
	unit := e.inventory.FindAvailableUnit(*data.BedsWanted, data.UnitID)
	if unit == nil {
		return fmt.Sprintf(
			"I have everything I need, but I don't see any %d-bedroom units open right now. Want me to check a different number of bedrooms?",
			*data.BedsWanted), false
	}
	// Remember the quoted unit so the booking matches the offer.
	data.UnitID = unit.UnitID
	return fmt.Sprintf(
		"That's everything I need! Unit %s (%d bed / %.1f bath, %d sqft) is available at $%d/mo. Shall I book your tour?",
		unit.UnitID, unit.Beds, unit.Baths, unit.Sqft, unit.Rent), true
}

// replyForBooking turns a booking attempt into user-facing text.
func (e *Engine) replyForBooking(session *Session, result *BookingResult, err error) string {
	switch {
	case err == nil:
		u := result.Units[0]
		return fmt.Sprintf(
			"You're booked! Unit %s, tour on %s at %s. Your confirmation number is %s and a confirmation email is on its way to %s.",
			u.UnitID, result.TourDate, result.TourTime, result.ConfirmationNumber, session.ProspectData.Email)
	case errors.Is(err, ErrNotificationDelivery):
		u := result.Units[0]
		return fmt.Sprintf(
			"You're booked! Unit %s, tour on %s at %s. Your confirmation number is %s. We couldn't send the confirmation email, so please hold on to that number.",
			u.UnitID, result.TourDate, result.TourTime, result.ConfirmationNumber)
	case errors.Is(err, ErrNoAvailability):
		e.metrics.ObserveBooking("no_availability")
		session.State = StateReadyToBook
		return "I'm sorry, that unit just became unavailable. Would you like me to look at other options?"
	case errors.Is(err, ErrIncompleteData):
		return "Almost there! " + advancePrompt(session)
	default:
		e.metrics.ObserveBooking("error")
		e.logger.Error("booking failed", "session_id", session.SessionID, "error", err)
		return "Something went wrong while booking your tour. Please try again in a moment."
	}
}

func (e *Engine) handleAddUnit(session *Session, unitID string) string {
	unit := e.inventory.FindUnitByID(unitID)
	if unit == nil {
		return fmt.Sprintf("I don't see a unit %s in our inventory. Could you double-check the number?", unitID)
	}
	if !unit.Available {
		return fmt.Sprintf("Unit %s has already been reserved. Want me to suggest something similar?", unitID)
	}
	session.ProspectData.AddSelectedUnit(unit.UnitID)
	return fmt.Sprintf("Added unit %s to your selections (%d total). Say \"book all\" when you're ready, or keep browsing.",
		unit.UnitID, len(session.ProspectData.SelectedUnits))
}

func (e *Engine) handleRemoveUnit(session *Session, unitID string) string {
	if session.ProspectData.RemoveSelectedUnit(unitID) {
		return fmt.Sprintf("Removed unit %s from your selections (%d remaining).",
			unitID, len(session.ProspectData.SelectedUnits))
	}
	return fmt.Sprintf("Unit %s wasn't in your selections.", unitID)
}

func (e *Engine) handleShowSelections(session *Session) string {
	selected := session.ProspectData.SelectedUnits
	if len(selected) == 0 {
		return "You haven't selected any units yet. Tell me something like \"add unit B301 to my selections\"."
	}
	var lines []string
	for _, id := range selected {
		if unit := e.inventory.FindUnitByID(id); unit != nil {
			lines = append(lines, fmt.Sprintf("%s (%d bed / %.1f bath, $%d/mo)", unit.UnitID, unit.Beds, unit.Baths, unit.Rent))
		} else {
			lines = append(lines, id)
		}
	}
	return "Your selections: " + strings.Join(lines, "; ") + ". Say \"book all\" to schedule one tour covering all of them."
}

func (e *Engine) handleBookUnit(ctx context.Context, session *Session, unitID, text string) string {
	// "book unit A101 and unit B301" turns into a selection set and books
	// them together.
	if mentioned := mentionedUnitIDs(text); len(mentioned) > 1 {
		var added int
		for _, id := range mentioned {
			if unit := e.inventory.FindUnitByID(id); unit != nil && unit.Available {
				session.ProspectData.AddSelectedUnit(unit.UnitID)
				added++
			}
		}
		if added > 1 {
			return e.handleConfirmMulti(ctx, session)
		}
	}

	unit := e.inventory.FindUnitByID(unitID)
	if unit == nil {
		return fmt.Sprintf("I don't see a unit %s in our inventory. Could you double-check the number?", unitID)
	}
	session.ProspectData.UnitID = unit.UnitID
	if session.ProspectData.IsComplete() {
		result, err := e.bookTour(ctx, session)
		return e.replyForBooking(session, result, err)
	}
	return fmt.Sprintf("Great choice, I've noted unit %s. ", unit.UnitID) + advancePrompt(session)
}

func (e *Engine) handleConfirmMulti(ctx context.Context, session *Session) string {
	if len(session.ProspectData.SelectedUnits) == 0 {
		return "You haven't selected any units yet. Add some first, like \"add unit B301 to my selections\"."
	}
	if !session.ProspectData.IsComplete() {
		return "Before I book those, I need a few details. " + advancePrompt(session)
	}
	result, err := e.bookSelectedTours(ctx, session)
	switch {
	case err == nil:
		return fmt.Sprintf(
			"All set! I've booked one tour covering %d units on %s at %s. Master confirmation %s; a full confirmation email is headed to %s.",
			len(result.Units), result.TourDate, result.TourTime, result.MasterConfirmation, session.ProspectData.Email) +
			droppedNote(result.Dropped)
	case errors.Is(err, ErrNotificationDelivery):
		return fmt.Sprintf(
			"All set! I've booked one tour covering %d units on %s at %s under master confirmation %s. We couldn't send the email, so please keep that number.",
			len(result.Units), result.TourDate, result.TourTime, result.MasterConfirmation) +
			droppedNote(result.Dropped)
	case errors.Is(err, ErrNoAvailability):
		e.metrics.ObserveBooking("no_availability")
		return "I'm sorry, none of your selected units are still available. Want me to find similar openings?"
	default:
		e.metrics.ObserveBooking("error")
		e.logger.Error("group booking failed", "session_id", session.SessionID, "error", err)
		return "Something went wrong while booking your tours. Please try again in a moment."
	}
}

func droppedNote(dropped []string) string {
	if len(dropped) == 0 {
		return ""
	}
	return fmt.Sprintf(" Heads up: %s got reserved by someone else and couldn't be included.",
		strings.Join(dropped, ", "))
}

func (e *Engine) handlePostBooking(ctx context.Context, session *Session) string {
	resp, err := e.llm.Complete(ctx, buildLLMRequest(e.propertyName, session))
	if err == nil && resp.Text != "" {
		session.AIContext.LastAIResponse = resp.Text
		return resp.Text
	}
	return fmt.Sprintf(
		"You're all set for your tour! If anything changes, call our leasing office at %s. Is there anything else I can help with?",
		e.officePhone)
}

// DeleteSession removes a session from the store.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return e.store.Delete(ctx, sessionID)
}

// GetSession loads a session without processing a turn.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return e.store.Load(ctx, sessionID)
}
