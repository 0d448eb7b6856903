// Package events fans ledger events out to subscribers such as websocket
// clients. A subscriber may ask for a subset of event types.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Set of event types produced by the node.
const (
	TypeBlock = "block"
	TypeChain = "chain"
	TypeTx    = "tx"
	TypeNode  = "node"
)

// Event is a single message delivered to the subscribers of its type.
type Event struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// messageBuffer is the number of undelivered events a subscriber may hold.
// Events beyond it are dropped so Send never waits on a slow websocket.
const messageBuffer = 100

type subscriber struct {
	ch    chan Event
	types map[string]bool
}

func (s subscriber) wants(typ string) bool {
	return len(s.types) == 0 || s.types[typ]
}

// Events maintains the set of subscribers keyed by a unique id.
type Events struct {
	subs    map[string]subscriber
	mu      sync.RWMutex
	dropped atomic.Uint64
}

// New constructs an empty set of subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]subscriber),
	}
}

// Shutdown closes and removes every subscriber.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.subs {
		delete(evt.subs, id)
		close(sub.ch)
	}
}

// Acquire registers a subscriber under the id and returns the channel its
// events arrive on. With no types the subscriber receives every event.
// Acquiring an id twice returns the existing channel.
func (evt *Events) Acquire(id string, types ...string) <-chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if sub, exists := evt.subs[id]; exists {
		return sub.ch
	}

	sub := subscriber{
		ch:    make(chan Event, messageBuffer),
		types: make(map[string]bool, len(types)),
	}
	for _, typ := range types {
		if typ != "" {
			sub.types[typ] = true
		}
	}

	evt.subs[id] = sub
	return sub.ch
}

// Release closes and removes the subscriber registered under the id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.subs, id)
	close(sub.ch)
	return nil
}

// Send delivers an event to every subscriber of its type without blocking.
// Subscribers with a full buffer miss the event.
func (evt *Events) Send(typ string, message string) {
	e := Event{
		Type:    typ,
		Message: message,
		Time:    time.Now().UTC(),
	}

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, sub := range evt.subs {
		if !sub.wants(typ) {
			continue
		}

		select {
		case sub.ch <- e:
		default:
			evt.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of registered subscribers.
func (evt *Events) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Dropped returns the number of events not delivered because a subscriber
// buffer was full.
func (evt *Events) Dropped() uint64 {
	return evt.dropped.Load()
}
