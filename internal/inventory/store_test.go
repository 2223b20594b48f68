package inventory

import (
	"math/rand"
	"sync"
	"testing"
)

// newTestStore disables the simulated-unavailability roll so lookups are
// deterministic; tests that want the roll pass WithUnavailabilityRate(1).
func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{WithUnavailabilityRate(0)}
	return NewStore(nil, append(base, opts...)...)
}

func TestFindAvailableUnitByBeds(t *testing.T) {
	s := newTestStore(t)
	unit := s.FindAvailableUnit(2, "")
	if unit == nil {
		t.Fatal("expected a 2-bedroom unit")
	}
	if unit.Beds != 2 {
		t.Fatalf("expected beds=2, got %d", unit.Beds)
	}
	if unit.UnitID != "B301" {
		t.Fatalf("expected first 2-bed unit B301 for session consistency, got %s", unit.UnitID)
	}
}

func TestFindAvailableUnitPrefersOfferedUnit(t *testing.T) {
	s := newTestStore(t)
	unit := s.FindAvailableUnit(2, "B503")
	if unit == nil || unit.UnitID != "B503" {
		t.Fatalf("expected preferred unit B503, got %+v", unit)
	}
}

func TestFindAvailableUnitSimulatedUnavailability(t *testing.T) {
	s := NewStore(nil, WithUnavailabilityRate(1))
	if unit := s.FindAvailableUnit(1, ""); unit != nil {
		t.Fatalf("expected simulated unavailability, got %s", unit.UnitID)
	}
	// Preferred units bypass the roll entirely.
	if unit := s.FindAvailableUnit(1, "A205"); unit == nil || unit.UnitID != "A205" {
		t.Fatalf("expected preferred unit to bypass simulation, got %+v", unit)
	}
}

func TestReserveFlipsAvailability(t *testing.T) {
	s := newTestStore(t)
	if !s.Reserve("A101") {
		t.Fatal("expected first reservation to succeed")
	}
	if s.Reserve("A101") {
		t.Fatal("expected second reservation of same unit to fail")
	}
	if u := s.FindUnitByID("A101"); u == nil || u.Available {
		t.Fatalf("expected A101 unavailable after reserve, got %+v", u)
	}
}

func TestReserveUnknownUnit(t *testing.T) {
	s := newTestStore(t)
	if s.Reserve("Z999") {
		t.Fatal("expected reservation of unknown unit to fail")
	}
}

func TestReserveIfAvailableSingleWinner(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	wins := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := s.ReserveIfAvailable("D801")
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winner for the last unit, got %d", won)
	}
}

func TestListAvailableExcludesReserved(t *testing.T) {
	s := newTestStore(t)
	before := len(s.ListAvailable())
	s.Reserve("B402")
	after := len(s.ListAvailable())
	if after != before-1 {
		t.Fatalf("expected available count to drop by one, got %d -> %d", before, after)
	}
	for _, u := range s.ListAvailable() {
		if u.UnitID == "B402" {
			t.Fatal("reserved unit still listed as available")
		}
		if u.UnitID == "C602" {
			t.Fatal("pre-reserved seed unit listed as available")
		}
	}
}

func TestWithUnitsOverridesSeed(t *testing.T) {
	s := NewStore(nil,
		WithRandSource(rand.NewSource(1)),
		WithUnavailabilityRate(0),
		WithUnits([]Unit{{UnitID: "X1", Beds: 1, Baths: 1, Sqft: 600, Rent: 1700, Available: true}}),
	)
	unit := s.FindAvailableUnit(1, "")
	if unit == nil || unit.UnitID != "X1" {
		t.Fatalf("expected overridden portfolio unit, got %+v", unit)
	}
}
