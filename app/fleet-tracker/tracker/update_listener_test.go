package tracker

import (
	"errors"
	"testing"

	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
	"github.com/matryer/is"
	"github.com/nats-io/nats.go"
)

func Test_processLocationUpdateFromMsg(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
		wantLat float64
	}{
		{
			name:    "accepted",
			payload: `{"vehicleId":"PB-01-2001","location":{"lat":30.70,"lng":76.84},"timestamp":"2025-09-01T08:05:00Z"}`,
			wantLat: 30.70,
		},
		{
			name:    "stale",
			payload: `{"vehicleId":"PB-01-2001","location":{"lat":30.70,"lng":76.84},"timestamp":"2025-09-01T07:55:00Z"}`,
			wantErr: fleet.ErrStaleUpdate,
			wantLat: 30.6942,
		},
		{
			name:    "unknown vehicle",
			payload: `{"vehicleId":"XYZ","location":{"lat":30.70,"lng":76.84},"timestamp":"2025-09-01T08:05:00Z"}`,
			wantErr: fleet.ErrUnknownVehicle,
			wantLat: 30.6942,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := makeTestFleet(t)
			err := processLocationUpdateFromMsg(makeTestLogger(), &nats.Msg{Data: []byte(tt.payload)}, f.store)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("processLocationUpdateFromMsg() error = %v, want %v", err, tt.wantErr)
			}
			vehicle, _ := f.store.Get("PB-01-2001")
			if vehicle.Location.Lat != tt.wantLat {
				t.Errorf("latitude = %v, want %v", vehicle.Location.Lat, tt.wantLat)
			}
		})
	}
}

func Test_processLocationUpdateFromMsg_Rejections(t *testing.T) {
	is := is.New(t)
	f := makeTestFleet(t)

	err := processLocationUpdateFromMsg(makeTestLogger(), &nats.Msg{Data: []byte(`not json`)}, f.store)
	is.True(err != nil)

	payload := `{"vehicleId":"PB-01-2001","location":{"lat":30.70,"lng":76.84},"passengers":41,` +
		`"timestamp":"2025-09-01T08:05:00Z"}`
	err = processLocationUpdateFromMsg(makeTestLogger(), &nats.Msg{Data: []byte(payload)}, f.store)
	var invalid *fleet.InvalidPayloadError
	is.True(errors.As(err, &invalid))
	is.Equal(invalid.Field, "passengers")

	vehicle, err := f.store.Get("PB-01-2001")
	is.NoErr(err)
	is.True(vehicle.LastUpdated.Equal(seedTime)) // rejected updates change nothing
}
