package tracker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/matryer/is"
)

// recordingSink keeps every delta sent to it, failing for vehicles in failFor
type recordingSink struct {
	mu      sync.Mutex
	sent    []bus.VehicleStateChanged
	failFor string
}

func (r *recordingSink) name() string {
	return "recording sink"
}

func (r *recordingSink) send(delta bus.VehicleStateChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if delta.VehicleId == r.failFor {
		return errors.New("refused")
	}
	r.sent = append(r.sent, delta)
	return nil
}

func (r *recordingSink) sentIds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]string, 0)
	for _, delta := range r.sent {
		results = append(results, delta.VehicleId)
	}
	return results
}

func Test_runDeltaForwarder(t *testing.T) {
	is := is.New(t)
	f := makeTestFleet(t)
	sink := &recordingSink{failFor: "PB-01-1002"}
	wg := sync.WaitGroup{}
	shutdown := make(chan bool, 1)

	wg.Add(1)
	go runDeltaForwarder(makeTestLogger(), &wg, f.hub, sink, shutdown)

	// wait for the forwarder to subscribe
	deadline := time.Now().Add(2 * time.Second)
	for f.hub.SubscriberCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	is.Equal(f.hub.SubscriberCount(), 1)

	for i, vehicleId := range []string{"PB-01-1001", "PB-01-1002", "PB-01-3001"} {
		_, err := f.store.Apply(bus.UpdateEnvelope{
			VehicleId: vehicleId,
			Location:  bus.Location{Lat: 30.7, Lng: 76.8},
			Timestamp: seedTime.Add(time.Duration(i+1) * time.Minute),
		})
		is.NoErr(err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for len(sink.sentIds()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// a failing send does not stop the forwarder
	is.Equal(sink.sentIds(), []string{"PB-01-1001", "PB-01-3001"})

	shutdown <- true
	wg.Wait()
	is.Equal(f.hub.SubscriberCount(), 0)
}
