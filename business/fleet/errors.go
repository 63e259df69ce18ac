package fleet

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVehicle is returned when an update or lookup names a vehicle that is not registered
	ErrUnknownVehicle = errors.New("unknown vehicle")
	// ErrStaleUpdate is returned when an update's timestamp does not advance the vehicle's lastUpdated
	ErrStaleUpdate = errors.New("stale update")
	// ErrUnknownRoute is returned when a route is not in the catalog
	ErrUnknownRoute = errors.New("unknown route")
)

// InvalidPayloadError reports the first field of an update that violates a constraint
type InvalidPayloadError struct {
	Field      string
	Constraint string
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid payload: %s violates %s", e.Field, e.Constraint)
}
