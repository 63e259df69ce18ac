package tracker

import (
	logger "log"
	"net/http"
	"strings"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
)

//kilometersPerHourToMetersPerSecond converts the fleet's speed unit to the one GTFS-realtime uses
const kilometersPerHourToMetersPerSecond = 1 / 3.6

//vehiclePositionsHandler holds data needed to respond and log GTFS-realtime vehicle position requests
type vehiclePositionsHandler struct {
	log   *logger.Logger
	store *fleet.Store
}

//vehiclePositionsHandler factory
func makeVehiclePositionsHandler(log *logger.Logger, store *fleet.Store) *vehiclePositionsHandler {
	return &vehiclePositionsHandler{
		log:   log,
		store: store,
	}
}

//ServeHTTP implements vehiclePositionsHandler's http.Handler interface
func (v *vehiclePositionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	asText := strings.ToLower(r.FormValue("text")) == "true"
	asJson := strings.ToLower(r.FormValue("json")) == "true"
	feedMessage := buildVehiclePositionsFeed(uint64(time.Now().Unix()), v.store.List(fleet.Filter{}))
	if asJson {
		v.writeJSON(feedMessage, w)
	} else if asText {
		v.writeProtocolBufferAsText(feedMessage, w)
	} else {
		v.writeProtocolBuffer(feedMessage, w)
	}
}

//writeProtocolBuffer marshal gtfsrt.FeedMessage as protocol buffer to http.ResponseWriter
func (v *vehiclePositionsHandler) writeProtocolBuffer(feedMessage *gtfsrt.FeedMessage, w http.ResponseWriter) {
	bytes, err := proto.Marshal(feedMessage)
	if err != nil {
		v.log.Printf("Failed to marshal gtfsrt.FeedMessage to bytes, error:%s", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	if _, err = w.Write(bytes); err != nil {
		v.log.Printf("Error writing bytes to http.ResponseWriter, error:%s", err)
	}
}

//writeProtocolBufferAsText write plain text formatting of gtfsrt.FeedMessage to http.ResponseWriter
func (v *vehiclePositionsHandler) writeProtocolBufferAsText(feedMessage *gtfsrt.FeedMessage, w http.ResponseWriter) {
	stringResponse := prototext.MarshalOptions{Multiline: true}.Format(feedMessage)
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte(stringResponse)); err != nil {
		v.log.Printf("Error writing bytes to http.ResponseWriter, error:%s", err)
	}
}

//writeJSON sends the feed in the protobuf json mapping
func (v *vehiclePositionsHandler) writeJSON(feedMessage *gtfsrt.FeedMessage, w http.ResponseWriter) {
	jsonData, err := protojson.Marshal(feedMessage)
	if err != nil {
		v.log.Printf("Error marshaling vehicle positions to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(jsonData); err != nil {
		v.log.Printf("Error writing json response: %s", err)
	}
}

//buildVehiclePositionsFeed builds a full dataset gtfsrt.FeedMessage with an entity per vehicle in service.
//Offline vehicles are left out
func buildVehiclePositionsFeed(now uint64, vehicles []bus.Vehicle) *gtfsrt.FeedMessage {
	incrementality := gtfsrt.FeedHeader_FULL_DATASET
	feedMessage := gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      &incrementality,
			Timestamp:           proto.Uint64(now),
		},
		Entity: []*gtfsrt.FeedEntity{},
	}
	for _, vehicle := range vehicles {
		if vehicle.Status == bus.StatusOffline {
			continue
		}
		feedMessage.Entity = append(feedMessage.Entity, makeVehiclePositionEntity(vehicle))
	}
	return &feedMessage
}

//makeVehiclePositionEntity create gtfsrt.FeedEntity from a vehicle's current state
func makeVehiclePositionEntity(vehicle bus.Vehicle) *gtfsrt.FeedEntity {
	occupancy := occupancyStatus(vehicle)
	position := gtfsrt.VehiclePosition{
		Vehicle: &gtfsrt.VehicleDescriptor{
			Id:    proto.String(vehicle.VehicleId),
			Label: proto.String(vehicle.VehicleId),
		},
		Position: &gtfsrt.Position{
			Latitude:  proto.Float32(float32(vehicle.Location.Lat)),
			Longitude: proto.Float32(float32(vehicle.Location.Lng)),
			Speed:     proto.Float32(float32(vehicle.Speed * kilometersPerHourToMetersPerSecond)),
		},
		Timestamp:       proto.Uint64(uint64(vehicle.LastUpdated.Unix())),
		OccupancyStatus: &occupancy,
	}
	if vehicle.RouteId != "" {
		position.Trip = &gtfsrt.TripDescriptor{RouteId: proto.String(vehicle.RouteId)}
	}
	return &gtfsrt.FeedEntity{
		Id:      proto.String(vehicle.VehicleId),
		Vehicle: &position,
	}
}

//occupancyStatus maps the passenger load of vehicle onto the GTFS-realtime occupancy scale
func occupancyStatus(vehicle bus.Vehicle) gtfsrt.VehiclePosition_OccupancyStatus {
	if vehicle.Status != bus.StatusActive {
		return gtfsrt.VehiclePosition_NOT_ACCEPTING_PASSENGERS
	}
	if vehicle.Capacity <= 0 || vehicle.CurrentPassengers == 0 {
		return gtfsrt.VehiclePosition_EMPTY
	}
	load := float64(vehicle.CurrentPassengers) / float64(vehicle.Capacity)
	switch {
	case load >= 1:
		return gtfsrt.VehiclePosition_FULL
	case load >= 0.8:
		return gtfsrt.VehiclePosition_STANDING_ROOM_ONLY
	case load >= 0.5:
		return gtfsrt.VehiclePosition_FEW_SEATS_AVAILABLE
	}
	return gtfsrt.VehiclePosition_MANY_SEATS_AVAILABLE
}
