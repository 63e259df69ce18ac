// Package fleet holds the authoritative in memory state of a bus fleet, the rules for accepting reported
// updates, the broadcast of accepted changes to subscribers and the route catalog queried alongside it.
package fleet

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
)

// Publisher receives every vehicle record accepted by a Store
type Publisher interface {
	Publish(vehicle bus.Vehicle)
}

// Filter selects vehicles in Store.List. Empty fields match every vehicle
type Filter struct {
	Status  bus.Status
	RouteId string
}

// matches returns true when vehicle satisfies every field set in the filter
func (f Filter) matches(vehicle *bus.Vehicle) bool {
	if f.Status != "" && vehicle.Status != f.Status {
		return false
	}
	if f.RouteId != "" && vehicle.RouteId != f.RouteId {
		return false
	}
	return true
}

// vehicleRecord holds the committed state of one vehicle.
// mu serializes writers; readers load current without locking and always see a complete record.
type vehicleRecord struct {
	mu      sync.Mutex
	current atomic.Pointer[bus.Vehicle]
}

// Store owns the mapping from vehicle id to current vehicle state.
// Updates are accepted only when they carry a timestamp newer than the stored record.
type Store struct {
	mu        sync.RWMutex
	records   map[string]*vehicleRecord
	order     []*vehicleRecord
	publisher Publisher
}

// NewStore creates an empty Store that reports accepted updates to publisher, which may be nil
func NewStore(publisher Publisher) *Store {
	return &Store{
		records:   make(map[string]*vehicleRecord),
		order:     make([]*vehicleRecord, 0),
		publisher: publisher,
	}
}

// Add registers a vehicle. Registration order is the order List returns vehicles in
func (s *Store) Add(vehicle bus.Vehicle) error {
	if vehicle.VehicleId == "" {
		return fmt.Errorf("vehicle has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, present := s.records[vehicle.VehicleId]; present {
		return fmt.Errorf("vehicle %s already registered", vehicle.VehicleId)
	}
	record := &vehicleRecord{}
	stored := cloneVehicle(&vehicle)
	record.current.Store(&stored)
	s.records[vehicle.VehicleId] = record
	s.order = append(s.order, record)
	return nil
}

// Len returns the number of registered vehicles
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Get returns the current state of vehicleId or ErrUnknownVehicle
func (s *Store) Get(vehicleId string) (bus.Vehicle, error) {
	record := s.record(vehicleId)
	if record == nil {
		return bus.Vehicle{}, ErrUnknownVehicle
	}
	return cloneVehicle(record.current.Load()), nil
}

// List returns every vehicle matching filter in registration order
func (s *Store) List(filter Filter) []bus.Vehicle {
	s.mu.RLock()
	order := s.order
	s.mu.RUnlock()

	results := make([]bus.Vehicle, 0)
	for _, record := range order {
		vehicle := record.current.Load()
		if filter.matches(vehicle) {
			results = append(results, cloneVehicle(vehicle))
		}
	}
	return results
}

// Apply accepts or rejects update.
// Rejections are ErrUnknownVehicle, *InvalidPayloadError or ErrStaleUpdate, the latter returned together with
// the unchanged current record. Accepted updates replace the whole record, fields absent from update keep their
// current value, and the new record is handed to the Store's Publisher before Apply returns.
func (s *Store) Apply(update bus.UpdateEnvelope) (bus.Vehicle, error) {
	record := s.record(update.VehicleId)
	if record == nil {
		return bus.Vehicle{}, ErrUnknownVehicle
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	current := record.current.Load()
	if err := ValidateUpdate(update, current.Capacity); err != nil {
		return bus.Vehicle{}, err
	}
	if !update.Timestamp.After(current.LastUpdated) {
		return cloneVehicle(current), ErrStaleUpdate
	}

	next := overlay(current, &update)
	record.current.Store(&next)

	// publish while holding the record's lock so deltas for one vehicle leave in timestamp order
	if s.publisher != nil {
		s.publisher.Publish(cloneVehicle(&next))
	}
	return cloneVehicle(&next), nil
}

func (s *Store) record(vehicleId string) *vehicleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[vehicleId]
}

// overlay builds a new record from current with the fields present in update applied
func overlay(current *bus.Vehicle, update *bus.UpdateEnvelope) bus.Vehicle {
	next := cloneVehicle(current)
	next.Location = update.Location
	if update.CurrentPassengers != nil {
		next.CurrentPassengers = *update.CurrentPassengers
	}
	if update.Speed != nil {
		next.Speed = *update.Speed
	}
	if update.DelayMinutes != nil {
		next.DelayMinutes = *update.DelayMinutes
	}
	if update.Status != nil {
		next.Status = *update.Status
		// only active vehicles have a driver
		if next.Status != bus.StatusActive {
			next.Driver = nil
		}
	}
	next.LastUpdated = update.Timestamp
	return next
}

// cloneVehicle copies vehicle so callers never share the stored Driver
func cloneVehicle(vehicle *bus.Vehicle) bus.Vehicle {
	result := *vehicle
	if vehicle.Driver != nil {
		driver := *vehicle.Driver
		result.Driver = &driver
	}
	return result
}
