package tracker

import (
	"math"
	"net/http"
	"testing"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/matryer/is"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

func Test_occupancyStatus(t *testing.T) {
	tests := []struct {
		name    string
		vehicle bus.Vehicle
		want    gtfsrt.VehiclePosition_OccupancyStatus
	}{
		{
			name:    "empty",
			vehicle: bus.Vehicle{Status: bus.StatusActive, Capacity: 40},
			want:    gtfsrt.VehiclePosition_EMPTY,
		},
		{
			name:    "many seats",
			vehicle: bus.Vehicle{Status: bus.StatusActive, Capacity: 40, CurrentPassengers: 10},
			want:    gtfsrt.VehiclePosition_MANY_SEATS_AVAILABLE,
		},
		{
			name:    "few seats at half",
			vehicle: bus.Vehicle{Status: bus.StatusActive, Capacity: 40, CurrentPassengers: 20},
			want:    gtfsrt.VehiclePosition_FEW_SEATS_AVAILABLE,
		},
		{
			name:    "standing room",
			vehicle: bus.Vehicle{Status: bus.StatusActive, Capacity: 40, CurrentPassengers: 35},
			want:    gtfsrt.VehiclePosition_STANDING_ROOM_ONLY,
		},
		{
			name:    "full",
			vehicle: bus.Vehicle{Status: bus.StatusActive, Capacity: 40, CurrentPassengers: 40},
			want:    gtfsrt.VehiclePosition_FULL,
		},
		{
			name:    "in maintenance",
			vehicle: bus.Vehicle{Status: bus.StatusMaintenance, Capacity: 40},
			want:    gtfsrt.VehiclePosition_NOT_ACCEPTING_PASSENGERS,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := occupancyStatus(tt.vehicle); got != tt.want {
				t.Errorf("occupancyStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_buildVehiclePositionsFeed(t *testing.T) {
	is := is.New(t)
	f := makeTestFleet(t)

	feed := buildVehiclePositionsFeed(1756717200, f.store.List(fleet.Filter{}))
	is.Equal(feed.Header.GetTimestamp(), uint64(1756717200))
	is.Equal(feed.Header.GetIncrementality(), gtfsrt.FeedHeader_FULL_DATASET)
	is.Equal(len(feed.Entity), 5) // the offline bus is left out

	first := feed.Entity[0]
	is.Equal(first.GetId(), "PB-01-1001")
	position := first.GetVehicle()
	is.Equal(position.GetTrip().GetRouteId(), "12A")
	is.Equal(position.GetPosition().GetLatitude(), float32(30.7333))
	is.True(math.Abs(float64(position.GetPosition().GetSpeed())-34.5/3.6) < 0.001)
	is.Equal(position.GetTimestamp(), uint64(seedTime.Unix()))
	is.Equal(position.GetOccupancyStatus(), gtfsrt.VehiclePosition_FEW_SEATS_AVAILABLE)

	for _, entity := range feed.Entity {
		is.True(entity.GetId() != "PB-01-5001")
	}
}

func TestVehiclePositionsHandler(t *testing.T) {
	is := is.New(t)
	f := makeTestFleet(t)

	rec := serveTestRequest(t, f, http.MethodGet, "/api/vehiclePositions", "")
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(rec.Header().Get("Content-Type"), "application/x-protobuf")
	var feed gtfsrt.FeedMessage
	is.NoErr(proto.Unmarshal(rec.Body.Bytes(), &feed))
	is.Equal(len(feed.Entity), 5)

	rec = serveTestRequest(t, f, http.MethodGet, "/api/vehiclePositions?json=true", "")
	is.Equal(rec.Header().Get("Content-Type"), "application/json")
	var jsonFeed gtfsrt.FeedMessage
	is.NoErr(protojson.Unmarshal(rec.Body.Bytes(), &jsonFeed))
	is.Equal(len(jsonFeed.Entity), 5)

	rec = serveTestRequest(t, f, http.MethodGet, "/api/vehiclePositions?text=true", "")
	is.Equal(rec.Header().Get("Content-Type"), "text/plain")
	is.True(rec.Body.Len() > 0)
}
