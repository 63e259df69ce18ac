package tracker

import (
	"fmt"
	logger "log"
	"os"
	"sync"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

//WebConf contains the http server parameters of the tracker
type WebConf struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	WebSocket       WebSocketConf
}

//Conf contains everything StartServices needs to know about which child services to run and how
type Conf struct {
	Web          WebConf
	HubQueueSize int
	//LocationUpdateSubject is the NATS subject location updates are received on
	LocationUpdateSubject string
	//StateChangedSubject is the NATS subject accepted vehicle state changes are relayed to, empty disables the relay
	StateChangedSubject string
	RedisKey            string
	RedisTTL            time.Duration
	StatusLogInterval   time.Duration
	Simulate            bool
	SimulateInterval    time.Duration
	SimulateStep        float64
}

//StartServices builds the fleet from seed and brings up backgroundLoop, webservice and, when their connections
//are present, the NATS location update listener, NATS relay and redis mirror. natsConn and redisClient may be nil.
//Returns on shutdown signal once every child service has stopped
func StartServices(log *logger.Logger,
	seed *bus.Seed,
	natsConn *nats.Conn,
	redisClient *redis.Client,
	conf Conf,
	shutdownSignal chan os.Signal) error {

	wg := sync.WaitGroup{}

	//create shared fleet state
	hub := fleet.NewHub(conf.HubQueueSize)
	store, catalog, err := buildFleet(seed, hub)
	if err != nil {
		return err
	}
	query := fleet.NewQuery(store, catalog, fleet.NewNationalHolidayCalendar())
	log.Printf("Loaded %d vehicles and %d routes", store.Len(), len(catalog.ListRoutes("")))

	var shutdownChannels []chan bool
	makeShutdown := func() chan bool {
		ch := make(chan bool, 1)
		shutdownChannels = append(shutdownChannels, ch)
		return ch
	}

	//start all child services
	if natsConn != nil {
		ch, sub, err := subscribeLocationUpdates(natsConn, conf.LocationUpdateSubject)
		if err != nil {
			return err
		}
		wg.Add(1)
		go runLocationUpdateListener(log, &wg, ch, sub, store, makeShutdown())

		if conf.StateChangedSubject != "" {
			wg.Add(1)
			go runDeltaForwarder(log, &wg, hub, makeNatsDeltaRelay(natsConn, conf.StateChangedSubject),
				makeShutdown())
		}
	}
	if redisClient != nil {
		wg.Add(1)
		go runDeltaForwarder(log, &wg, hub, makeRedisPositionMirror(redisClient, conf.RedisKey, conf.RedisTTL),
			makeShutdown())
	}
	if conf.Simulate {
		wg.Add(1)
		go runSimulatorLoop(log, &wg, makeSimulator(store, catalog, conf.SimulateStep, time.Now().UnixNano()),
			conf.SimulateInterval, makeShutdown())
	}
	wg.Add(2)
	go runBackgroundLoop(log, &wg, store, hub, conf.StatusLogInterval, makeShutdown())
	go runWebService(log, &wg, store, query, hub, conf.Web, makeShutdown())

	select {
	case <-shutdownSignal:
		log.Printf("Exiting on shutdown signal, shutting down subroutines")
		for _, ch := range shutdownChannels {
			ch <- true
		}
		wg.Wait()
		log.Printf("Subroutines shut down, exiting fleet tracker")
	}
	return nil
}

//buildFleet registers the seed vehicles in a new store publishing to hub, and the seed routes in a catalog
func buildFleet(seed *bus.Seed, hub *fleet.Hub) (*fleet.Store, *fleet.Catalog, error) {
	store := fleet.NewStore(hub)
	for _, vehicle := range seed.Vehicles {
		if err := store.Add(vehicle); err != nil {
			return nil, nil, fmt.Errorf("registering seed vehicle: %w", err)
		}
	}
	return store, fleet.NewCatalog(seed.Routes), nil
}

//runBackgroundLoop frequently logs the size of the fleet and how many observers are subscribed
func runBackgroundLoop(log *logger.Logger,
	wg *sync.WaitGroup,
	store *fleet.Store,
	hub *fleet.Hub,
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
			log.Printf("Exiting background loop on shutdown signal")

			return
		case <-sleepChan:
		}

		active := len(store.List(fleet.Filter{Status: bus.StatusActive}))
		log.Printf("Fleet has %d vehicles, %d active. %d subscribers", store.Len(), active, hub.SubscriberCount())

	}
}
