package tracker

import (
	"math"
	"testing"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/matryer/is"
)

func Test_interpolate(t *testing.T) {
	path := bus.Path{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 20}, {Lat: 20, Lng: 20}}
	tests := []struct {
		name string
		at   float64
		want bus.Location
	}{
		{name: "start", at: 0, want: bus.Location{Lat: 0, Lng: 0}},
		{name: "half way along first segment", at: 0.5, want: bus.Location{Lat: 5, Lng: 10}},
		{name: "second point", at: 1, want: bus.Location{Lat: 10, Lng: 20}},
		{name: "quarter of second segment", at: 1.25, want: bus.Location{Lat: 12.5, Lng: 20}},
		{name: "past the end", at: 2, want: bus.Location{Lat: 20, Lng: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interpolate(path, tt.at)
			if math.Abs(got.Lat-tt.want.Lat) > 1e-9 || math.Abs(got.Lng-tt.want.Lng) > 1e-9 {
				t.Errorf("interpolate(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func Test_nearestPathPoint(t *testing.T) {
	is := is.New(t)
	path := bus.Path{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 20}, {Lat: 20, Lng: 20}}
	is.Equal(nearestPathPoint(path, bus.Location{Lat: 19, Lng: 21}), 2)
	is.Equal(nearestPathPoint(path, bus.Location{Lat: 1, Lng: -1}), 0)
}

func TestSimulator_Tick(t *testing.T) {
	is := is.New(t)
	f := makeTestFleet(t)
	sim := makeSimulator(f.store, f.catalog, 0.25, 1)
	now := seedTime.Add(time.Minute)

	// all four active demo buses have routes with paths
	is.Equal(sim.tick(now), 4)

	for _, vehicleId := range []string{"PB-01-1001", "PB-01-1002", "PB-01-2001", "PB-01-3001"} {
		vehicle, err := f.store.Get(vehicleId)
		is.NoErr(err)
		is.True(vehicle.LastUpdated.Equal(now))
		is.True(vehicle.CurrentPassengers >= 0 && vehicle.CurrentPassengers <= vehicle.Capacity)
		is.True(vehicle.Speed >= 0)
	}
	for _, vehicleId := range []string{"PB-01-4001", "PB-01-5001"} {
		vehicle, err := f.store.Get(vehicleId)
		is.NoErr(err)
		is.True(vehicle.LastUpdated.Equal(seedTime)) // buses out of service stay put
	}

	// a tick at the same time is stale for every bus
	is.Equal(sim.tick(now), 0)
}

func TestSimulator_WrapsAround(t *testing.T) {
	is := is.New(t)
	f := makeTestFleet(t)
	sim := makeSimulator(f.store, f.catalog, 0.5, 1)
	route, present := f.catalog.Route("12A")
	is.True(present)
	segments := float64(len(route.Path) - 1)

	now := seedTime
	for i := 0; i < 20; i++ {
		now = now.Add(time.Second)
		sim.tick(now)
		is.True(sim.progress["PB-01-1001"] < segments)
	}
}
