package tracker

import (
	"io"
	logger "log"
	"testing"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
)

// seedTime is the lastUpdated of every vehicle in the demo seed
var seedTime = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

var testWebSocketConf = WebSocketConf{
	WriteWait:    time.Second,
	PongWait:     5 * time.Second,
	PingInterval: 4 * time.Second,
}

func makeTestLogger() *logger.Logger {
	return logger.New(io.Discard, "", 0)
}

// testFleet holds the demo fleet wired the way StartServices wires it
type testFleet struct {
	hub     *fleet.Hub
	store   *fleet.Store
	catalog *fleet.Catalog
	query   *fleet.Query
}

func makeTestFleet(t *testing.T) *testFleet {
	seed, err := bus.DemoSeed()
	if err != nil {
		t.Fatalf("unable to load demo seed: %v", err)
	}
	hub := fleet.NewHub(8)
	store, catalog, err := buildFleet(seed, hub)
	if err != nil {
		t.Fatalf("unable to build demo fleet: %v", err)
	}
	return &testFleet{
		hub:     hub,
		store:   store,
		catalog: catalog,
		query:   fleet.NewQuery(store, catalog, fleet.NewNationalHolidayCalendar()),
	}
}
