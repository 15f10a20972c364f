package auth

import (
	"sync"

	"github.com/healthycare/healthycare/session"
)

// Snapshot is an immutable copy of the machine's published state. Consumers
// (UI handlers, route guard) only ever see snapshots, never live state.
type Snapshot struct {
	Status          Status
	User            *session.Session
	Err             error
	IsAuthenticated bool
	IsInitializing  bool
}

// publisher is the context-publisher half of the machine: it serializes
// state mutations and fans the resulting snapshot out to subscribers. It
// holds no state of its own beyond the subscriber list.
type publisher struct {
	mu          sync.Mutex
	subscribers map[int]func(Snapshot)
	nextID      int
}

func newPublisher() *publisher {
	return &publisher{subscribers: make(map[int]func(Snapshot))}
}

// mutate applies a state change and notifies every subscriber with the new
// snapshot. Subscribers are called outside the lock so a slow consumer
// cannot stall the machine.
func (p *publisher) mutate(apply func() Snapshot) {
	p.mu.Lock()
	snap := apply()
	callbacks := make([]func(Snapshot), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		callbacks = append(callbacks, fn)
	}
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(snap)
	}
}

// read returns a snapshot built under the lock.
func (p *publisher) read(build func() Snapshot) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return build()
}

// subscribe registers a callback and immediately delivers the current
// snapshot so late subscribers never miss the present state.
func (p *publisher) subscribe(build func() Snapshot, fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn
	snap := build()
	p.mu.Unlock()

	fn(snap)

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}
