// Package bus provides the vehicle and route records of a bus fleet and the loaders that
// bring them into memory
package bus

import (
	"fmt"
	"time"
)

// Status is the operating state of a vehicle
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusOffline     Status = "offline"
)

// Valid returns true if s is one of the recognized statuses
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusOffline:
		return true
	}
	return false
}

// Location is a WGS84 coordinate
type Location struct {
	Lat float64 `json:"lat" yaml:"lat" db:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" yaml:"lng" db:"lng" validate:"gte=-180,lte=180"`
}

// Driver identifies the person operating an active vehicle
type Driver struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Phone string `json:"phone" yaml:"phone"`
}

// Vehicle is the current state of a single bus.
// VehicleId and Capacity never change once the vehicle is registered.
type Vehicle struct {
	VehicleId         string    `json:"id" yaml:"id" db:"vehicle_id" validate:"required"`
	RouteId           string    `json:"routeId" yaml:"routeId" db:"route_id"`
	Location          Location  `json:"location" yaml:"location"`
	Status            Status    `json:"status" yaml:"status" db:"status" validate:"oneof=active maintenance offline"`
	Capacity          int       `json:"capacity" yaml:"capacity" db:"capacity" validate:"gte=0"`
	CurrentPassengers int       `json:"currentPassengers" yaml:"currentPassengers" db:"current_passengers" validate:"gte=0,ltefield=Capacity"`
	DelayMinutes      int       `json:"delay" yaml:"delay" db:"delay_minutes"`
	Speed             float64   `json:"speed" yaml:"speed" db:"speed" validate:"gte=0"`
	Driver            *Driver   `json:"driver,omitempty" yaml:"driver,omitempty"`
	LastUpdated       time.Time `json:"lastUpdated" yaml:"lastUpdated" db:"last_updated"`
}

func (v Vehicle) String() string {
	return fmt.Sprintf("Vehicle id:%s, route:%s, status:%s, at:(%f,%f), passengers:%d/%d, lastUpdated:%s",
		v.VehicleId, v.RouteId, v.Status, v.Location.Lat, v.Location.Lng, v.CurrentPassengers, v.Capacity,
		v.LastUpdated.Format(time.RFC3339))
}

// UpdateEnvelope carries a reported change for one vehicle. Optional fields are pointers and are nil when
// the reporter did not include them; they leave the vehicle's current value in place.
type UpdateEnvelope struct {
	VehicleId         string    `json:"vehicleId" validate:"required"`
	Location          Location  `json:"location"`
	CurrentPassengers *int      `json:"passengers,omitempty" validate:"omitempty,gte=0"`
	Speed             *float64  `json:"speed,omitempty" validate:"omitempty,gte=0"`
	DelayMinutes      *int      `json:"delay,omitempty"`
	Status            *Status   `json:"status,omitempty" validate:"omitempty,oneof=active maintenance offline"`
	Timestamp         time.Time `json:"timestamp"`
}

// VehicleStateChanged is the delta broadcast when an update for a vehicle has been accepted
type VehicleStateChanged struct {
	VehicleId         string    `json:"vehicleId"`
	Location          Location  `json:"location"`
	CurrentPassengers int       `json:"currentPassengers"`
	Speed             float64   `json:"speed"`
	DelayMinutes      int       `json:"delay"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// MakeVehicleStateChanged builds the delta describing vehicle's current state
func MakeVehicleStateChanged(vehicle Vehicle) VehicleStateChanged {
	return VehicleStateChanged{
		VehicleId:         vehicle.VehicleId,
		Location:          vehicle.Location,
		CurrentPassengers: vehicle.CurrentPassengers,
		Speed:             vehicle.Speed,
		DelayMinutes:      vehicle.DelayMinutes,
		LastUpdated:       vehicle.LastUpdated,
	}
}
