package fleet

import (
	"fmt"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
)

// Query answers fleet and route requests from the Store's committed state and the Catalog.
// It never reads from the broadcast stream.
type Query struct {
	store    *Store
	catalog  *Catalog
	holidays *HolidayCalendar
}

// NewQuery creates Query over store and catalog, using holidays to pick schedules for departures
func NewQuery(store *Store, catalog *Catalog, holidays *HolidayCalendar) *Query {
	return &Query{
		store:    store,
		catalog:  catalog,
		holidays: holidays,
	}
}

// ListVehicles returns vehicles with status and on routeId, either of which may be empty to match all
func (q *Query) ListVehicles(status bus.Status, routeId string) []bus.Vehicle {
	return q.store.List(Filter{Status: status, RouteId: routeId})
}

// GetVehicle returns the current state of vehicleId or ErrUnknownVehicle
func (q *Query) GetVehicle(vehicleId string) (bus.Vehicle, error) {
	return q.store.Get(vehicleId)
}

// ListRoutes returns the route with routeId, or every route when routeId is empty
func (q *Query) ListRoutes(routeId string) []bus.Route {
	return q.catalog.ListRoutes(routeId)
}

// SearchRoutes returns routes matching query, see Catalog.SearchRoutes
func (q *Query) SearchRoutes(query string) []bus.Route {
	return q.catalog.SearchRoutes(query)
}

// Departures returns up to limit upcoming departures of routeId at or after at
func (q *Query) Departures(routeId string, at time.Time, limit int) ([]Departure, error) {
	route, present := q.catalog.Route(routeId)
	if !present {
		return nil, fmt.Errorf("route %s: %w", routeId, ErrUnknownRoute)
	}
	return q.holidays.Departures(route, at, limit), nil
}
