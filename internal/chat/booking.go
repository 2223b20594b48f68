package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leaseline/lease-concierge/internal/inventory"
	"github.com/leaseline/lease-concierge/internal/notify"
)

var (
	// ErrNoAvailability means no unit matched the prospect's criteria.
	ErrNoAvailability = errors.New("chat: no matching units available")
	// ErrIncompleteData means required prospect fields are still missing.
	ErrIncompleteData = errors.New("chat: prospect data incomplete")
	// ErrNotificationDelivery means the booking committed but the
	// confirmation email could not be delivered.
	ErrNotificationDelivery = errors.New("chat: confirmation email delivery failed")
)

// BookingResult captures a committed tour booking.
type BookingResult struct {
	ConfirmationNumber string
	MasterConfirmation string
	Units              []notify.TourUnit
	Dropped            []string
	TourDate           string
	TourTime           string
	EmailDelivered     bool
}

// bookTour reserves one unit and emails a confirmation. The reservation
// commits before the email goes out; delivery failure surfaces as
// ErrNotificationDelivery wrapped into the result, never as a rollback.
func (e *Engine) bookTour(ctx context.Context, session *Session) (*BookingResult, error) {
	data := &session.ProspectData
	if !data.IsComplete() {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteData, strings.Join(data.MissingFields(), ", "))
	}

	var unit *inventory.Unit
	if data.UnitID != "" {
		reserved, ok := e.inventory.ReserveIfAvailable(data.UnitID)
		if !ok {
			return nil, fmt.Errorf("%w: unit %s is no longer available", ErrNoAvailability, data.UnitID)
		}
		unit = reserved
	} else {
		found := e.inventory.FindAvailableUnit(*data.BedsWanted, "")
		if found == nil {
			return nil, fmt.Errorf("%w: no %d-bedroom units open", ErrNoAvailability, *data.BedsWanted)
		}
		reserved, ok := e.inventory.ReserveIfAvailable(found.UnitID)
		if !ok {
			return nil, fmt.Errorf("%w: unit %s was taken", ErrNoAvailability, found.UnitID)
		}
		unit = reserved
	}

	slot := notify.NextTourSlot(e.now())
	result := &BookingResult{
		ConfirmationNumber: notify.NewConfirmationNumber(),
		TourDate:           slot.Format("Monday, January 2, 2006"),
		TourTime:           slot.Format("3:04 PM"),
		Units: []notify.TourUnit{{
			UnitID: unit.UnitID,
			Beds:   unit.Beds,
			Baths:  unit.Baths,
			Sqft:   unit.Sqft,
			Rent:   unit.Rent,
		}},
	}
	result.Units[0].ConfirmationNumber = result.ConfirmationNumber

	data.UnitID = unit.UnitID
	session.State = StateBookingConfirmed

	err := e.notifier.SendTourConfirmation(ctx, notify.TourConfirmation{
		Name:               data.Name,
		Email:              data.Email,
		PropertyName:       e.propertyName,
		PropertyAddress:    e.propertyAddress,
		OfficePhone:        e.officePhone,
		MoveInDate:         data.MoveInDate,
		ConfirmationNumber: result.ConfirmationNumber,
		TourDate:           result.TourDate,
		TourTime:           result.TourTime,
		Units:              result.Units,
	})
	if err != nil {
		e.logger.Error("confirmation email failed, booking stands",
			"session_id", session.SessionID, "unit_id", unit.UnitID, "error", err)
		e.metrics.ObserveEmail("failed")
		e.metrics.ObserveBooking("confirmed_email_failed")
		return result, fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}
	result.EmailDelivered = true
	e.metrics.ObserveEmail("delivered")
	e.metrics.ObserveBooking("confirmed")
	e.logger.Info("tour booked", "session_id", session.SessionID,
		"unit_id", unit.UnitID, "confirmation", result.ConfirmationNumber)
	return result, nil
}

// bookSelectedTours reserves every selected unit it can, dropping the ones
// that are gone, and issues per-unit confirmation numbers under one master
// number. Fails only when no selected unit could be reserved.
func (e *Engine) bookSelectedTours(ctx context.Context, session *Session) (*BookingResult, error) {
	data := &session.ProspectData
	if !data.IsComplete() {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteData, strings.Join(data.MissingFields(), ", "))
	}
	if len(data.SelectedUnits) == 0 {
		return nil, fmt.Errorf("%w: no units selected", ErrNoAvailability)
	}

	var booked []notify.TourUnit
	var dropped []string
	for _, unitID := range data.SelectedUnits {
		unit, ok := e.inventory.ReserveIfAvailable(unitID)
		if !ok {
			dropped = append(dropped, unitID)
			continue
		}
		booked = append(booked, notify.TourUnit{
			UnitID:             unit.UnitID,
			Beds:               unit.Beds,
			Baths:              unit.Baths,
			Sqft:               unit.Sqft,
			Rent:               unit.Rent,
			ConfirmationNumber: notify.NewConfirmationNumber(),
		})
	}
	if len(dropped) > 0 {
		e.logger.Warn("selected units no longer available",
			"session_id", session.SessionID, "units", strings.Join(dropped, ","))
	}
	if len(booked) == 0 {
		return nil, fmt.Errorf("%w: none of the selected units are still available", ErrNoAvailability)
	}

	slot := notify.NextTourSlot(e.now())
	result := &BookingResult{
		MasterConfirmation: notify.NewConfirmationNumber(),
		Units:              booked,
		Dropped:            dropped,
		TourDate:           slot.Format("Monday, January 2, 2006"),
		TourTime:           slot.Format("3:04 PM"),
	}

	session.State = StateBookingConfirmed
	data.SelectedUnits = nil

	err := e.notifier.SendMultiTourConfirmation(ctx, notify.TourConfirmation{
		Name:               data.Name,
		Email:              data.Email,
		PropertyName:       e.propertyName,
		PropertyAddress:    e.propertyAddress,
		OfficePhone:        e.officePhone,
		MoveInDate:         data.MoveInDate,
		MasterConfirmation: result.MasterConfirmation,
		TourDate:           result.TourDate,
		TourTime:           result.TourTime,
		Units:              booked,
	})
	if err != nil {
		e.logger.Error("group confirmation email failed, bookings stand",
			"session_id", session.SessionID, "error", err)
		e.metrics.ObserveEmail("failed")
		e.metrics.ObserveBooking("confirmed_email_failed")
		return result, fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}
	result.EmailDelivered = true
	e.metrics.ObserveEmail("delivered")
	e.metrics.ObserveBooking("confirmed")
	e.logger.Info("group tour booked", "session_id", session.SessionID,
		"units", len(booked), "master_confirmation", result.MasterConfirmation)
	return result, nil
}
