package tracker

import (
	"context"
	"encoding/json"
	"errors"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
	"github.com/gorilla/mux"
)

const defaultDepartureLimit = 5

//defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

//ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

//listResponse wraps a sequence of results with its length
type listResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
}

//itemResponse wraps a single result. Event is set when an update was accepted
type itemResponse struct {
	Success bool                     `json:"success"`
	Data    interface{}              `json:"data"`
	Event   *bus.VehicleStateChanged `json:"event,omitempty"`
	Message string                   `json:"message,omitempty"`
}

//errorResponse reports a failed request, Field names the offending input when known
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

//locationUpdateBody is the request body accepted when a bus reports its position
type locationUpdateBody struct {
	Lat        *float64    `json:"lat"`
	Lng        *float64    `json:"lng"`
	Passengers *int        `json:"passengers"`
	Speed      *float64    `json:"speed"`
	Delay      *int        `json:"delay"`
	Status     *bus.Status `json:"status"`
	Timestamp  *time.Time  `json:"timestamp"`
}

//fleetHandlers holds data needed to respond to and log fleet and route requests
type fleetHandlers struct {
	log   *logger.Logger
	store *fleet.Store
	query *fleet.Query
	now   func() time.Time
}

//makeFleetHandlers fleetHandlers factory
func makeFleetHandlers(log *logger.Logger, store *fleet.Store, query *fleet.Query) *fleetHandlers {
	return &fleetHandlers{
		log:   log,
		store: store,
		query: query,
		now:   time.Now,
	}
}

//listVehicles responds with vehicles matching optional status and routeId query parameters
func (f *fleetHandlers) listVehicles(w http.ResponseWriter, r *http.Request) {
	status := bus.Status(r.FormValue("status"))
	vehicles := f.query.ListVehicles(status, r.FormValue("routeId"))
	f.writeJSON(w, http.StatusOK, listResponse{Success: true, Data: vehicles, Count: len(vehicles)})
}

//getVehicle responds with a single vehicle or not found
func (f *fleetHandlers) getVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := f.query.GetVehicle(mux.Vars(r)["id"])
	if err != nil {
		f.writeError(w, err)
		return
	}
	f.writeJSON(w, http.StatusOK, itemResponse{Success: true, Data: vehicle})
}

//updateLocation applies a reported position to the store. Stale reports succeed without changing anything
func (f *fleetHandlers) updateLocation(w http.ResponseWriter, r *http.Request) {
	var body locationUpdateBody
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&body); err != nil {
		f.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Malformed request body: " + err.Error()})
		return
	}
	if body.Lat == nil || body.Lng == nil {
		f.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Latitude and longitude are required",
			Field: "location"})
		return
	}
	update := bus.UpdateEnvelope{
		VehicleId:         mux.Vars(r)["id"],
		Location:          bus.Location{Lat: *body.Lat, Lng: *body.Lng},
		CurrentPassengers: body.Passengers,
		Speed:             body.Speed,
		DelayMinutes:      body.Delay,
		Status:            body.Status,
		Timestamp:         f.now(),
	}
	if body.Timestamp != nil {
		update.Timestamp = *body.Timestamp
	}

	vehicle, err := f.store.Apply(update)
	if errors.Is(err, fleet.ErrStaleUpdate) {
		f.log.Printf("ignored stale update for vehicle %s at %s", update.VehicleId,
			update.Timestamp.Format(time.RFC3339Nano))
		f.writeJSON(w, http.StatusOK, itemResponse{Success: true, Data: vehicle, Message: "Stale update ignored"})
		return
	}
	if err != nil {
		f.writeError(w, err)
		return
	}
	event := bus.MakeVehicleStateChanged(vehicle)
	f.writeJSON(w, http.StatusOK, itemResponse{Success: true, Data: vehicle, Event: &event})
}

//listRoutes responds with one route by routeId or the whole catalog
func (f *fleetHandlers) listRoutes(w http.ResponseWriter, r *http.Request) {
	routes := f.query.ListRoutes(r.FormValue("routeId"))
	f.writeJSON(w, http.StatusOK, listResponse{Success: true, Data: routes, Count: len(routes)})
}

//searchRoutes responds with routes matching the q query parameter
func (f *fleetHandlers) searchRoutes(w http.ResponseWriter, r *http.Request) {
	routes := f.query.SearchRoutes(r.FormValue("q"))
	f.writeJSON(w, http.StatusOK, listResponse{Success: true, Data: routes, Count: len(routes)})
}

//routeDepartures responds with upcoming departures of a route after "at" (RFC3339, default now)
func (f *fleetHandlers) routeDepartures(w http.ResponseWriter, r *http.Request) {
	at := f.now()
	if value := r.FormValue("at"); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			f.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "at must be an RFC3339 time", Field: "at"})
			return
		}
		at = parsed
	}
	limit := defaultDepartureLimit
	if value := r.FormValue("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			f.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "limit must be a positive integer",
				Field: "limit"})
			return
		}
		limit = parsed
	}
	departures, err := f.query.Departures(mux.Vars(r)["id"], at, limit)
	if err != nil {
		f.writeError(w, err)
		return
	}
	f.writeJSON(w, http.StatusOK, listResponse{Success: true, Data: departures, Count: len(departures)})
}

//writeError maps fleet errors to http status codes and error responses
func (f *fleetHandlers) writeError(w http.ResponseWriter, err error) {
	var invalid *fleet.InvalidPayloadError
	switch {
	case errors.Is(err, fleet.ErrUnknownVehicle):
		f.writeJSON(w, http.StatusNotFound, errorResponse{Message: "Bus not found"})
	case errors.Is(err, fleet.ErrUnknownRoute):
		f.writeJSON(w, http.StatusNotFound, errorResponse{Message: "Route not found"})
	case errors.As(err, &invalid):
		f.writeJSON(w, http.StatusBadRequest, errorResponse{Message: invalid.Error(), Field: invalid.Field})
	default:
		f.log.Printf("Error serving request: %v", err)
		f.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Error serving request"})
	}
}

//writeJSON marshals response and writes it with status
func (f *fleetHandlers) writeJSON(w http.ResponseWriter, status int, response interface{}) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		f.log.Printf("Error marshaling response to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(jsonData); err != nil {
		f.log.Printf("Error writing json response: %s", err)
	}
}

//createRouter builds the http.Handler serving every endpoint of the tracker
func createRouter(log *logger.Logger,
	store *fleet.Store,
	query *fleet.Query,
	hub *fleet.Hub,
	wsConf WebSocketConf) *mux.Router {

	handlers := makeFleetHandlers(log, store, query)

	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/buses", handlers.listVehicles).Methods(http.MethodGet)
	api.HandleFunc("/buses/{id}", handlers.getVehicle).Methods(http.MethodGet)
	api.HandleFunc("/buses/{id}/location", handlers.updateLocation).Methods(http.MethodPut)
	api.HandleFunc("/routes", handlers.listRoutes).Methods(http.MethodGet)
	api.HandleFunc("/routes/search", handlers.searchRoutes).Methods(http.MethodGet)
	api.HandleFunc("/routes/{id}/departures", handlers.routeDepartures).Methods(http.MethodGet)
	api.Handle("/vehiclePositions", makeVehiclePositionsHandler(log, store)).Methods(http.MethodGet)
	r.Handle("/ws", makeWebSocketHandler(log, store, hub, wsConf))
	return r
}

//createServer creates configured http.Server for the tracker's endpoints
func createServer(log *logger.Logger,
	store *fleet.Store,
	query *fleet.Query,
	hub *fleet.Hub,
	conf WebConf) *http.Server {

	srv := &http.Server{
		Addr:         strings.Join([]string{"0.0.0.0", strconv.Itoa(conf.Port)}, ":"),
		WriteTimeout: conf.WriteTimeout,
		ReadTimeout:  conf.ReadTimeout,
		IdleTimeout:  conf.IdleTimeout,
		Handler:      createRouter(log, store, query, hub, conf.WebSocket),
	}
	return srv
}

//runWebService starts up the tracker web service, and terminates on shutdown signal
func runWebService(log *logger.Logger,
	wg *sync.WaitGroup,
	store *fleet.Store,
	query *fleet.Query,
	hub *fleet.Hub,
	conf WebConf,
	shutdownSignal chan bool,
) {
	defer wg.Done()
	srv := createServer(log, store, query, hub, conf)
	log.Printf("Starting server on port %d", conf.Port)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()

	<-shutdownSignal
	log.Printf("ending webservice on shutdown signal")
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer serverCancelFunc()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down webservice, error:%s", err)
	}
}
