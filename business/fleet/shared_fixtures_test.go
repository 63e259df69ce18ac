package fleet

import (
	"testing"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
)

// seedTime is the lastUpdated of every vehicle in the demo seed
var seedTime = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

func getDemoSeed(t *testing.T) *bus.Seed {
	seed, err := bus.DemoSeed()
	if err != nil {
		t.Fatalf("unable to load demo seed: %v", err)
	}
	return seed
}

// makeDemoStore loads the demo fleet into a new Store publishing to publisher
func makeDemoStore(t *testing.T, publisher Publisher) *Store {
	store := NewStore(publisher)
	for _, vehicle := range getDemoSeed(t).Vehicles {
		if err := store.Add(vehicle); err != nil {
			t.Fatalf("unable to add vehicle %s: %v", vehicle.VehicleId, err)
		}
	}
	return store
}

func makeUpdate(vehicleId string, lat, lng float64, at time.Time) bus.UpdateEnvelope {
	return bus.UpdateEnvelope{
		VehicleId: vehicleId,
		Location:  bus.Location{Lat: lat, Lng: lng},
		Timestamp: at,
	}
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func statusPtr(s bus.Status) *bus.Status {
	return &s
}

// recordingPublisher keeps everything published to it
type recordingPublisher struct {
	published []bus.Vehicle
}

func (r *recordingPublisher) Publish(vehicle bus.Vehicle) {
	r.published = append(r.published, vehicle)
}
