package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leaseline/lease-concierge/pkg/logging"
)

// TourUnit describes one unit included in a tour confirmation.
type TourUnit struct {
	UnitID             string
	Beds               int
	Baths              float64
	Sqft               int
	Rent               int
	ConfirmationNumber string
}

// TourConfirmation is everything needed to render a confirmation email.
type TourConfirmation struct {
	Name               string
	Email              string
	PropertyName       string
	PropertyAddress    string
	OfficePhone        string
	MoveInDate         string
	ConfirmationNumber string
	MasterConfirmation string
	TourDate           string
	TourTime           string
	Units              []TourUnit
}

// Service sends tour confirmation emails with bounded retry. A nil Service
// is safe to call and does nothing, so callers never guard for it.
type Service struct {
	sender     EmailSender
	retryMax   int
	retryDelay time.Duration
	logger     *logging.Logger
}

// NewService wires an email sender with retry policy. retryMax is the total
// number of attempts; retryDelay is the first backoff interval, doubled on
// each subsequent attempt.
func NewService(sender EmailSender, retryMax int, retryDelay time.Duration, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if retryMax < 1 {
		retryMax = 1
	}
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	return &Service{
		sender:     sender,
		retryMax:   retryMax,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// NewConfirmationNumber returns a short human-readable confirmation code.
func NewConfirmationNumber() string {
	return "LC-" + strings.ToUpper(uuid.New().String()[:8])
}

// NextTourSlot returns the next available tour slot: 2:00 PM local time
// on the day after now.
func NextTourSlot(now time.Time) time.Time {
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 14, 0, 0, 0, now.Location())
}

// SendTourConfirmation emails a single-unit tour confirmation. The booking
// itself is already committed; a delivery failure here is reported but must
// not unwind the reservation.
func (s *Service) SendTourConfirmation(ctx context.Context, conf TourConfirmation) error {
	if s == nil || s.sender == nil {
		return nil
	}
	if len(conf.Units) != 1 {
		return fmt.Errorf("notify: single tour confirmation requires exactly one unit, got %d", len(conf.Units))
	}
	u := conf.Units[0]
	data := map[string]any{
		"Name":               conf.Name,
		"PropertyName":       conf.PropertyName,
		"PropertyAddress":    conf.PropertyAddress,
		"OfficePhone":        conf.OfficePhone,
		"MoveInDate":         conf.MoveInDate,
		"ConfirmationNumber": conf.ConfirmationNumber,
		"TourDate":           conf.TourDate,
		"TourTime":           conf.TourTime,
		"UnitID":             u.UnitID,
		"Beds":               u.Beds,
		"Baths":              u.Baths,
		"Sqft":               u.Sqft,
		"Rent":               u.Rent,
	}
	body, err := renderText("tour_text", tourTextTemplate, data)
	if err != nil {
		return err
	}
	html, err := renderHTML("tour_html", tourHTMLTemplate, data)
	if err != nil {
		return err
	}
	msg := EmailMessage{
		To:      conf.Email,
		ToName:  conf.Name,
		Subject: fmt.Sprintf("Tour Confirmed: Unit %s at %s", u.UnitID, conf.PropertyName),
		Body:    body,
		HTML:    html,
	}
	return s.sendWithRetry(ctx, msg)
}

// SendMultiTourConfirmation emails a confirmation covering several units
// under one master confirmation number.
func (s *Service) SendMultiTourConfirmation(ctx context.Context, conf TourConfirmation) error {
	if s == nil || s.sender == nil {
		return nil
	}
	if len(conf.Units) == 0 {
		return fmt.Errorf("notify: multi tour confirmation requires at least one unit")
	}
	body, err := renderText("multi_tour_text", multiTourTextTemplate, map[string]any{
		"Name":               conf.Name,
		"PropertyName":       conf.PropertyName,
		"PropertyAddress":    conf.PropertyAddress,
		"OfficePhone":        conf.OfficePhone,
		"MasterConfirmation": conf.MasterConfirmation,
		"TourDate":           conf.TourDate,
		"TourTime":           conf.TourTime,
		"Units":              conf.Units,
	})
	if err != nil {
		return err
	}
	msg := EmailMessage{
		To:      conf.Email,
		ToName:  conf.Name,
		Subject: fmt.Sprintf("Group Tour Confirmed: %d Units at %s", len(conf.Units), conf.PropertyName),
		Body:    body,
	}
	return s.sendWithRetry(ctx, msg)
}

// sendWithRetry attempts delivery up to retryMax times with exponential
// backoff, respecting context cancellation between attempts.
func (s *Service) sendWithRetry(ctx context.Context, msg EmailMessage) error {
	var lastErr error
	delay := s.retryDelay
	for attempt := 1; attempt <= s.retryMax; attempt++ {
		lastErr = s.sender.Send(ctx, msg)
		if lastErr == nil {
			return nil
		}
		s.logger.Warn("email delivery attempt failed",
			"attempt", attempt, "max_attempts", s.retryMax, "to", msg.To, "error", lastErr)
		if attempt == s.retryMax {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("notify: delivery canceled after attempt %d: %w", attempt, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("notify: delivery failed after %d attempts: %w", s.retryMax, lastErr)
}
