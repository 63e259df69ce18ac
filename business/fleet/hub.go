package fleet

import (
	"sync"
	"sync/atomic"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
)

// DefaultQueueSize is the number of undelivered deltas a Subscription holds before dropping the oldest
const DefaultQueueSize = 128

// Subscription receives the deltas published by a Hub until it is unsubscribed
type Subscription struct {
	id      uint64
	mu      sync.Mutex
	deltas  chan bus.VehicleStateChanged
	closed  bool
	dropped atomic.Uint64
}

// Deltas returns the channel deltas are delivered on. It is closed by Hub.Unsubscribe
func (s *Subscription) Deltas() <-chan bus.VehicleStateChanged {
	return s.deltas
}

// Dropped returns the number of deltas discarded because the subscription's queue was full
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Id returns the handle the hub knows this subscription by
func (s *Subscription) Id() uint64 {
	return s.id
}

// deliver queues delta without blocking, discarding the oldest queued delta when the queue is full
func (s *Subscription) deliver(delta bus.VehicleStateChanged) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.deltas <- delta:
			return
		default:
		}
		select {
		case <-s.deltas:
			s.dropped.Add(1)
		default:
		}
	}
}

// close stops delivery. Deltas already queued can still be received before the channel reports closed
func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.deltas)
}

// Hub fans accepted vehicle updates out to every open Subscription.
// Publish never blocks on a subscriber; each subscription has its own bounded queue.
type Hub struct {
	mu            sync.RWMutex
	queueSize     int
	nextId        uint64
	subscriptions map[uint64]*Subscription
}

// NewHub creates a Hub whose subscriptions queue up to queueSize deltas, DefaultQueueSize if queueSize < 1
func NewHub(queueSize int) *Hub {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		queueSize:     queueSize,
		subscriptions: make(map[uint64]*Subscription),
	}
}

// Subscribe opens a new Subscription that receives every delta published from now on
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextId++
	sub := &Subscription{
		id:     h.nextId,
		deltas: make(chan bus.VehicleStateChanged, h.queueSize),
	}
	h.subscriptions[sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its delta channel. Safe to call more than once and concurrently with Publish
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	delete(h.subscriptions, sub.id)
	h.mu.Unlock()
	sub.close()
}

// Publish implements Publisher, sending a VehicleStateChanged for vehicle to every open subscription
func (h *Hub) Publish(vehicle bus.Vehicle) {
	delta := bus.MakeVehicleStateChanged(vehicle)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscriptions {
		sub.deliver(delta)
	}
}

// SubscriberCount returns the number of open subscriptions
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions)
}
