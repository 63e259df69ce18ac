package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	logger "log"
	"sync"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

//deltaSink interface takes vehicle state changes from the hub and sends them to a destination outside
//the tracker (such as nats or redis)
type deltaSink interface {
	//name describes the destination for logging
	name() string
	//send delivers a single delta
	send(delta bus.VehicleStateChanged) error
}

//runDeltaForwarder subscribes to the hub and hands every delta to sink until shutdownSignal.
//A sink slower than the fleet loses the oldest deltas, which is logged as the drop count grows
func runDeltaForwarder(log *logger.Logger,
	wg *sync.WaitGroup,
	hub *fleet.Hub,
	sink deltaSink,
	shutdownSignal chan bool) {
	defer wg.Done()

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)
	log.Printf("Forwarding vehicle state changes to %s\n", sink.name())

	var reportedDrops uint64
	for {
		select {
		case delta, ok := <-sub.Deltas():
			if !ok {
				return
			}
			if err := sink.send(delta); err != nil {
				log.Printf("failed to send VehicleStateChanged for %s to %s, error:%v", delta.VehicleId,
					sink.name(), err)
			}
			if dropped := sub.Dropped(); dropped > reportedDrops {
				log.Printf("%s fell behind, %d deltas dropped so far", sink.name(), dropped)
				reportedDrops = dropped
			}
		case <-shutdownSignal:
			log.Printf("ending %s forwarder on shutdown signal", sink.name())
			return
		}
	}
}

//natsDeltaRelay republishes deltas as json on a NATS subject
type natsDeltaRelay struct {
	natsConnection *nats.Conn
	subject        string
}

//makeNatsDeltaRelay creates natsDeltaRelay
func makeNatsDeltaRelay(natsConnection *nats.Conn, subject string) *natsDeltaRelay {
	return &natsDeltaRelay{
		natsConnection: natsConnection,
		subject:        subject,
	}
}

func (n *natsDeltaRelay) name() string {
	return "nats subject " + n.subject
}

func (n *natsDeltaRelay) send(delta bus.VehicleStateChanged) error {
	jsonData, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("marshaling VehicleStateChanged: %w", err)
	}
	return n.natsConnection.Publish(n.subject, jsonData)
}

//redisPositionMirror keeps the latest delta of every vehicle in a redis hash keyed by vehicle id.
//The hash expires when no delta has arrived for ttl
type redisPositionMirror struct {
	client  *redis.Client
	key     string
	ttl     time.Duration
	timeout time.Duration
}

//makeRedisPositionMirror creates redisPositionMirror
func makeRedisPositionMirror(client *redis.Client, key string, ttl time.Duration) *redisPositionMirror {
	return &redisPositionMirror{
		client:  client,
		key:     key,
		ttl:     ttl,
		timeout: 2 * time.Second,
	}
}

func (r *redisPositionMirror) name() string {
	return "redis hash " + r.key
}

func (r *redisPositionMirror) send(delta bus.VehicleStateChanged) error {
	jsonData, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("marshaling VehicleStateChanged: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key, delta.VehicleId, jsonData)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	return err
}
