package fleet

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
)

func TestValidateUpdate(t *testing.T) {
	at := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		update   bus.UpdateEnvelope
		capacity int
		want     *InvalidPayloadError
	}{
		{
			name:     "valid location only",
			update:   makeUpdate("bus1", 30.7, 76.7, at),
			capacity: 50,
		},
		{
			name:     "upper coordinate bounds accepted",
			update:   makeUpdate("bus1", 90, 180, at),
			capacity: 50,
		},
		{
			name:     "lower coordinate bounds accepted",
			update:   makeUpdate("bus1", -90, -180, at),
			capacity: 50,
		},
		{
			name:     "latitude above 90",
			update:   makeUpdate("bus1", 95, 76.7, at),
			capacity: 50,
			want:     &InvalidPayloadError{Field: "location.lat", Constraint: "lte=90"},
		},
		{
			name:     "longitude below -180",
			update:   makeUpdate("bus1", 30, -180.5, at),
			capacity: 50,
			want:     &InvalidPayloadError{Field: "location.lng", Constraint: "gte=-180"},
		},
		{
			name:     "NaN latitude",
			update:   makeUpdate("bus1", math.NaN(), 76.7, at),
			capacity: 50,
			want:     &InvalidPayloadError{Field: "location.lat", Constraint: "gte=-90"},
		},
		{
			name: "negative passengers",
			update: bus.UpdateEnvelope{VehicleId: "bus1", Location: bus.Location{Lat: 1, Lng: 1},
				CurrentPassengers: intPtr(-1), Timestamp: at},
			capacity: 50,
			want:     &InvalidPayloadError{Field: "passengers", Constraint: "gte=0"},
		},
		{
			name: "zero passengers",
			update: bus.UpdateEnvelope{VehicleId: "bus1", Location: bus.Location{Lat: 1, Lng: 1},
				CurrentPassengers: intPtr(0), Timestamp: at},
			capacity: 50,
		},
		{
			name: "passengers at capacity",
			update: bus.UpdateEnvelope{VehicleId: "bus1", Location: bus.Location{Lat: 1, Lng: 1},
				CurrentPassengers: intPtr(50), Timestamp: at},
			capacity: 50,
		},
		{
			name: "passengers over capacity",
			update: bus.UpdateEnvelope{VehicleId: "bus1", Location: bus.Location{Lat: 1, Lng: 1},
				CurrentPassengers: intPtr(51), Timestamp: at},
			capacity: 50,
			want:     &InvalidPayloadError{Field: "passengers", Constraint: "lte=50 (capacity)"},
		},
		{
			name: "negative speed",
			update: bus.UpdateEnvelope{VehicleId: "bus1", Location: bus.Location{Lat: 1, Lng: 1},
				Speed: floatPtr(-0.1), Timestamp: at},
			capacity: 50,
			want:     &InvalidPayloadError{Field: "speed", Constraint: "gte=0"},
		},
		{
			name: "unrecognized status",
			update: bus.UpdateEnvelope{VehicleId: "bus1", Location: bus.Location{Lat: 1, Lng: 1},
				Status: statusPtr("parked"), Timestamp: at},
			capacity: 50,
			want:     &InvalidPayloadError{Field: "status", Constraint: "oneof=active maintenance offline"},
		},
		{
			name: "recognized status",
			update: bus.UpdateEnvelope{VehicleId: "bus1", Location: bus.Location{Lat: 1, Lng: 1},
				Status: statusPtr(bus.StatusMaintenance), Timestamp: at},
			capacity: 50,
		},
		{
			name:     "missing vehicle id",
			update:   makeUpdate("", 1, 1, at),
			capacity: 50,
			want:     &InvalidPayloadError{Field: "vehicleId", Constraint: "required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdate(tt.update, tt.capacity)
			if tt.want == nil {
				if err != nil {
					t.Errorf("ValidateUpdate() error = %v, want none", err)
				}
				return
			}
			var got *InvalidPayloadError
			if !errors.As(err, &got) {
				t.Fatalf("ValidateUpdate() error = %v, want *InvalidPayloadError", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ValidateUpdate() got = %+v, want %+v", got, tt.want)
			}
		})
	}
}
