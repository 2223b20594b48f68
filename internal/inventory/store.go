package inventory

import (
	"math/rand"
	"sync"

	"github.com/leaseline/lease-concierge/pkg/logging"
)

// Unit is one rentable apartment. Only the availability flag mutates after
// seeding; a reservation flips it false for the rest of the process lifetime.
type Unit struct {
	UnitID    string  `json:"unit_id"`
	Beds      int     `json:"beds"`
	Baths     float64 `json:"baths"`
	Sqft      int     `json:"sqft"`
	Rent      int     `json:"rent"`
	Available bool    `json:"available"`
}

// Store holds the unit portfolio. A single mutex spans every
// check-then-reserve sequence so two near-simultaneous bookings cannot both
// claim the last unit of a size.
type Store struct {
	mu     sync.Mutex
	units  []*Unit
	rand   *rand.Rand
	rate   float64
	logger *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithUnavailabilityRate overrides the simulated no-availability probability.
func WithUnavailabilityRate(rate float64) Option {
	return func(s *Store) {
		if rate >= 0 && rate <= 1 {
			s.rate = rate
		}
	}
}

// WithRandSource makes the availability simulation deterministic in tests.
func WithRandSource(src rand.Source) Option {
	return func(s *Store) { s.rand = rand.New(src) }
}

// WithUnits replaces the seeded portfolio.
func WithUnits(units []Unit) Option {
	return func(s *Store) {
		s.units = make([]*Unit, 0, len(units))
		for i := range units {
			u := units[i]
			s.units = append(s.units, &u)
		}
	}
}

// NewStore creates an inventory store seeded with the demo portfolio.
func NewStore(logger *logging.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Store{
		units:  seedUnits(),
		rand:   rand.New(rand.NewSource(rand.Int63())),
		rate:   0.15,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger.Info("inventory initialized", "units", len(s.units))
	return s
}

// seedUnits builds the demo portfolio: studios through 4-bedroom units with
// market-rate pricing. C602 starts reserved.
func seedUnits() []*Unit {
	return []*Unit{
		{UnitID: "S104", Beds: 0, Baths: 1.0, Sqft: 450, Rent: 1500, Available: true},
		{UnitID: "S207", Beds: 0, Baths: 1.0, Sqft: 500, Rent: 1600, Available: true},
		{UnitID: "S310", Beds: 0, Baths: 1.0, Sqft: 475, Rent: 1550, Available: true},
		{UnitID: "A101", Beds: 1, Baths: 1.0, Sqft: 650, Rent: 1800, Available: true},
		{UnitID: "A205", Beds: 1, Baths: 1.0, Sqft: 700, Rent: 1900, Available: true},
		{UnitID: "A308", Beds: 1, Baths: 1.5, Sqft: 750, Rent: 2000, Available: true},
		{UnitID: "A412", Beds: 1, Baths: 1.0, Sqft: 675, Rent: 1850, Available: true},
		{UnitID: "B301", Beds: 2, Baths: 2.0, Sqft: 950, Rent: 2400, Available: true},
		{UnitID: "B402", Beds: 2, Baths: 2.0, Sqft: 1000, Rent: 2500, Available: true},
		{UnitID: "B503", Beds: 2, Baths: 2.5, Sqft: 1100, Rent: 2700, Available: true},
		{UnitID: "B604", Beds: 2, Baths: 2.0, Sqft: 975, Rent: 2450, Available: true},
		{UnitID: "C501", Beds: 3, Baths: 2.5, Sqft: 1200, Rent: 3200, Available: true},
		{UnitID: "C602", Beds: 3, Baths: 2.5, Sqft: 1250, Rent: 3300, Available: false},
		{UnitID: "C703", Beds: 3, Baths: 3.0, Sqft: 1350, Rent: 3500, Available: true},
		{UnitID: "C804", Beds: 3, Baths: 2.5, Sqft: 1225, Rent: 3250, Available: true},
		{UnitID: "D801", Beds: 4, Baths: 3.0, Sqft: 1600, Rent: 4200, Available: true},
		{UnitID: "D902", Beds: 4, Baths: 3.5, Sqft: 1750, Rent: 4500, Available: true},
		{UnitID: "D1003", Beds: 4, Baths: 3.0, Sqft: 1650, Rent: 4300, Available: true},
	}
}

// FindAvailableUnit returns an available unit with the requested bedroom
// count. When preferredUnitID names a matching available unit it is returned
// directly so the same unit stays on offer for the whole conversation; the
// simulated no-availability roll only applies to fresh searches.
func (s *Store) FindAvailableUnit(beds int, preferredUnitID string) *Unit {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []*Unit
	for _, u := range s.units {
		if u.Beds == beds && u.Available {
			matches = append(matches, u)
		}
	}
	if len(matches) == 0 {
		s.logger.Info("no units available", "beds", beds)
		return nil
	}

	if preferredUnitID != "" {
		for _, u := range matches {
			if u.UnitID == preferredUnitID {
				return copyUnit(u)
			}
		}
	}

	if s.rand.Float64() < s.rate {
		s.logger.Info("simulating unavailability", "beds", beds)
		return nil
	}

	// First match keeps the offer stable within a session.
	return copyUnit(matches[0])
}

// FindUnitByID returns the unit with the given id, available or not.
func (s *Store) FindUnitByID(unitID string) *Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.UnitID == unitID {
			return copyUnit(u)
		}
	}
	return nil
}

// Reserve marks a unit unavailable. Returns false if the unit does not exist
// or was already reserved.
func (s *Store) Reserve(unitID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.UnitID == unitID && u.Available {
			u.Available = false
			s.logger.Info("reserved unit", "unit_id", unitID)
			return true
		}
	}
	s.logger.Warn("failed to reserve unit", "unit_id", unitID)
	return false
}

// ReserveIfAvailable resolves and reserves a unit in one critical section,
// closing the gap between an availability check and the reservation.
func (s *Store) ReserveIfAvailable(unitID string) (*Unit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.UnitID == unitID {
			if !u.Available {
				return copyUnit(u), false
			}
			u.Available = false
			s.logger.Info("reserved unit", "unit_id", unitID)
			return copyUnit(u), true
		}
	}
	return nil, false
}

// ListAvailable returns all currently available units in seed order.
func (s *Store) ListAvailable() []Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Unit, 0, len(s.units))
	for _, u := range s.units {
		if u.Available {
			out = append(out, *u)
		}
	}
	return out
}

func copyUnit(u *Unit) *Unit {
	c := *u
	return &c
}
