package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"sync"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
	"github.com/nats-io/nats.go"
)

//subscribeLocationUpdates starts NATS subscription on locationUpdateSubject, returning the message channel and
//subscription. Failing here stops the service from starting
func subscribeLocationUpdates(natsConn *nats.Conn, locationUpdateSubject string) (chan *nats.Msg,
	*nats.Subscription, error) {
	ch := make(chan *nats.Msg, 64)
	sub, err := natsConn.ChanSubscribe(locationUpdateSubject, ch)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribing to %s: %w", locationUpdateSubject, err)
	}
	return ch, sub, nil
}

//runLocationUpdateListener applies bus.UpdateEnvelope messages received on ch to the store.
//Ends NATS subscription and returns on shutdownSignal
func runLocationUpdateListener(
	log *logger.Logger,
	wg *sync.WaitGroup,
	ch chan *nats.Msg,
	sub *nats.Subscription,
	store *fleet.Store,
	shutdownSignal chan bool) {
	defer wg.Done()

	log.Printf("Listening for location updates on subject:%s\n", sub.Subject)
	for {
		select {
		case msg := <-ch:
			processLocationUpdateFromMsg(log, msg, store)
		case <-shutdownSignal:
			log.Printf("ending location update listener on shutdown signal\n")
			log.Printf("unsubscribing to nats\n")
			if err := sub.Unsubscribe(); err != nil {
				log.Printf("Error unsubscribing to nats:%s", err)
			}
			return
		}
	}
}

//processLocationUpdateFromMsg un-marshal bus.UpdateEnvelope from nats.Msg and apply it to the store.
//Returns the error from the store, nil when the update was accepted
func processLocationUpdateFromMsg(log *logger.Logger, msg *nats.Msg, store *fleet.Store) error {
	var update bus.UpdateEnvelope
	err := json.Unmarshal(msg.Data, &update)
	if err != nil {
		log.Printf("error parsing UpdateEnvelope: %s, payload:%s", err, string(msg.Data))
		return err
	}
	_, err = store.Apply(update)
	switch {
	case err == nil:
	case errors.Is(err, fleet.ErrStaleUpdate):
		// duplicates and retries are expected from upstream
	default:
		log.Printf("rejected update for vehicle %s: %v", update.VehicleId, err)
	}
	return err
}
