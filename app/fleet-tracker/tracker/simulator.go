package tracker

import (
	logger "log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
)

//simulator moves the active buses of a demonstration fleet along their route paths.
//It writes through fleet.Store.Apply like any other reporter
type simulator struct {
	store   *fleet.Store
	catalog *fleet.Catalog
	//step is how far along a route path a bus moves per tick, in path segments
	step float64
	//progress holds how far along its route path each bus is, keyed by vehicle id
	progress map[string]float64
	random   *rand.Rand
}

//makeSimulator creates simulator
func makeSimulator(store *fleet.Store, catalog *fleet.Catalog, step float64, seed int64) *simulator {
	return &simulator{
		store:    store,
		catalog:  catalog,
		step:     step,
		progress: make(map[string]float64),
		random:   rand.New(rand.NewSource(seed)),
	}
}

//tick advances every active bus with a route path and returns how many updates were accepted
func (s *simulator) tick(now time.Time) int {
	accepted := 0
	for _, vehicle := range s.store.List(fleet.Filter{Status: bus.StatusActive}) {
		route, present := s.catalog.Route(vehicle.RouteId)
		if !present || len(route.Path) < 2 {
			continue
		}
		update := s.nextUpdate(vehicle, route.Path, now)
		// a bus reported from elsewhere since the last tick keeps that report
		if _, err := s.store.Apply(update); err == nil {
			accepted++
		}
	}
	return accepted
}

//nextUpdate builds the update moving vehicle one step further along path, wrapping back to the start
func (s *simulator) nextUpdate(vehicle bus.Vehicle, path bus.Path, now time.Time) bus.UpdateEnvelope {
	segments := float64(len(path) - 1)
	at, known := s.progress[vehicle.VehicleId]
	if !known {
		at = float64(nearestPathPoint(path, vehicle.Location))
	}
	at = math.Mod(at+s.step, segments)
	s.progress[vehicle.VehicleId] = at

	passengers := vehicle.CurrentPassengers + s.random.Intn(7) - 3
	if passengers < 0 {
		passengers = 0
	}
	if passengers > vehicle.Capacity {
		passengers = vehicle.Capacity
	}
	speed := 15 + s.random.Float64()*30

	return bus.UpdateEnvelope{
		VehicleId:         vehicle.VehicleId,
		Location:          interpolate(path, at),
		CurrentPassengers: &passengers,
		Speed:             &speed,
		Timestamp:         now,
	}
}

//interpolate returns the location at fractional segment position at along path
func interpolate(path bus.Path, at float64) bus.Location {
	i := int(math.Floor(at))
	if i >= len(path)-1 {
		return path[len(path)-1]
	}
	fraction := at - float64(i)
	from, to := path[i], path[i+1]
	return bus.Location{
		Lat: from.Lat + (to.Lat-from.Lat)*fraction,
		Lng: from.Lng + (to.Lng-from.Lng)*fraction,
	}
}

//nearestPathPoint returns the index of the path point closest to location
func nearestPathPoint(path bus.Path, location bus.Location) int {
	nearest := 0
	best := math.MaxFloat64
	for i, point := range path {
		d := math.Hypot(point.Lat-location.Lat, point.Lng-location.Lng)
		if d < best {
			best = d
			nearest = i
		}
	}
	return nearest
}

//runSimulatorLoop ticks the simulator every loopDuration until shutdownSignal
func runSimulatorLoop(log *logger.Logger,
	wg *sync.WaitGroup,
	sim *simulator,
	loopDuration time.Duration,
	shutdownSignal chan bool) {
	defer wg.Done()

	sleepChan := make(chan bool, 1)
	sleep := loopDuration

	for {

		go func() {
			time.Sleep(sleep)
			sleepChan <- true
		}()

		select {
		case <-shutdownSignal:
			log.Printf("Exiting simulator loop on shutdown signal")
			return
		case <-sleepChan:
		}

		start := time.Now()
		accepted := sim.tick(start)
		log.Printf("simulator moved %d buses", accepted)

		workTook := time.Now().Sub(start)
		if workTook >= loopDuration {
			sleep = time.Duration(0)
		} else {
			sleep = loopDuration - workTook
		}
	}
}
