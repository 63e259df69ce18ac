package bus

import (
	"fmt"
	"strings"
)

// RouteType distinguishes limited stop services from all stop services
type RouteType string

const (
	RouteTypeExpress RouteType = "express"
	RouteTypeRegular RouteType = "regular"
)

// Stop is a named boarding point on a route. Sequence is strictly increasing along the route
type Stop struct {
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Location Location `json:"location" yaml:"location"`
	Sequence int      `json:"sequence" yaml:"sequence"`
}

// Schedule holds departure times from the origin as "HH:MM" strings
type Schedule struct {
	Weekday []string `json:"weekday" yaml:"weekday" validate:"dive,datetime=15:04"`
	Weekend []string `json:"weekend" yaml:"weekend" validate:"dive,datetime=15:04"`
}

// Route is a fixed bus route. Routes are reference data and are not modified after loading
type Route struct {
	RouteId          string     `json:"id" yaml:"id" db:"route_id" validate:"required"`
	Name             string     `json:"name" yaml:"name" db:"name" validate:"required"`
	From             string     `json:"from" yaml:"from" db:"from_name"`
	To               string     `json:"to" yaml:"to" db:"to_name"`
	Stops            StopList   `json:"stops" yaml:"stops" db:"stops" validate:"dive"`
	Path             Path       `json:"path" yaml:"path" db:"path" validate:"dive"`
	Schedule         Schedule   `json:"schedule" yaml:"schedule" db:"schedule"`
	Fare             float64    `json:"fare" yaml:"fare" db:"fare" validate:"gte=0"`
	DurationMinutes  int        `json:"duration" yaml:"duration" db:"duration_minutes" validate:"gte=0"`
	FrequencyMinutes int        `json:"frequency" yaml:"frequency" db:"frequency_minutes" validate:"gte=0"`
	Type             RouteType  `json:"type" yaml:"type" db:"route_type" validate:"oneof=express regular"`
	Features         FeatureSet `json:"features" yaml:"features" db:"features"`
	IsActive         bool       `json:"isActive" yaml:"isActive" db:"is_active"`
}

// StopList is the ordered stops of a route
type StopList []Stop

// Path is the ordered coordinates a route travels along
type Path []Location

// FeatureSet holds capability tags such as "ac" or "wifi"
type FeatureSet []string

// Has returns true if feature is present, ignoring case
func (f FeatureSet) Has(feature string) bool {
	for _, tag := range f {
		if strings.EqualFold(tag, feature) {
			return true
		}
	}
	return false
}

// checkStopSequence returns an error unless stop sequences strictly increase along the route
func (r *Route) checkStopSequence() error {
	for i := 1; i < len(r.Stops); i++ {
		if r.Stops[i].Sequence <= r.Stops[i-1].Sequence {
			return fmt.Errorf("route %s: stop %q has sequence %d, not after %q sequence %d", r.RouteId,
				r.Stops[i].Name, r.Stops[i].Sequence, r.Stops[i-1].Name, r.Stops[i-1].Sequence)
		}
	}
	return nil
}
