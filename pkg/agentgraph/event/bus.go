package event

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
)

// Bus distributes events to subscribers.
type Bus interface {
	// Publish delivers an event to all matching subscribers.
	Publish(ctx context.Context, evt Event)

	// Subscribe registers a handler for the given kinds.
	// An empty kinds list subscribes to everything. The returned
	// Subscription is never nil, even after Close.
	Subscribe(kinds []string, handler Handler) Subscription

	// Close shuts down the bus and all subscriptions.
	Close() error
}

// Subscription is an active registration on a Bus.
type Subscription interface {
	// Unsubscribe removes the subscription. Buffered events may still
	// be delivered.
	Unsubscribe()
}

// BusConfig configures a LocalBus.
type BusConfig struct {
	// BufferSize is the channel buffer per subscription. Default: 64.
	BufferSize int

	// OnDrop is called when a subscriber's buffer is full and an
	// event is discarded.
	OnDrop func(evt Event, subscriberID string)
}

// LocalBus is an in-memory Bus. Delivery is asynchronous: Publish
// never blocks on a slow subscriber, a full buffer drops the event.
type LocalBus struct {
	config BusConfig

	mu        sync.RWMutex
	subs      map[string]*localSub
	byKind    map[string]map[string]*localSub
	wildcards map[string]*localSub

	nextID atomic.Int64
	closed atomic.Bool
}

// NewBus creates a LocalBus.
func NewBus(config BusConfig) *LocalBus {
	if config.BufferSize <= 0 {
		config.BufferSize = 64
	}
	return &LocalBus{
		config:    config,
		subs:      make(map[string]*localSub),
		byKind:    make(map[string]map[string]*localSub),
		wildcards: make(map[string]*localSub),
	}
}

type localSub struct {
	id      string
	kinds   []string
	handler Handler
	events  chan Event
	done    chan struct{}
	bus     *LocalBus
}

// Publish delivers an event to all matching subscribers.
func (b *LocalBus) Publish(ctx context.Context, evt Event) {
	if b.closed.Load() {
		return
	}

	b.mu.RLock()
	var targets []*localSub
	if kindSubs, ok := b.byKind[evt.Kind]; ok {
		for _, sub := range kindSubs {
			targets = append(targets, sub)
		}
	}
	for _, sub := range b.wildcards {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.events <- evt:
		default:
			if b.config.OnDrop != nil {
				b.config.OnDrop(evt, sub.id)
			}
		}
	}
}

// noopSub is handed out by a closed bus so callers can always defer
// Unsubscribe on the returned Subscription.
type noopSub struct{}

func (noopSub) Unsubscribe() {}

// Subscribe registers a handler for the given kinds. Subscribing on a
// closed bus returns an inert subscription that never receives events.
func (b *LocalBus) Subscribe(kinds []string, handler Handler) Subscription {
	if b.closed.Load() {
		return noopSub{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &localSub{
		id:      strconv.FormatInt(b.nextID.Add(1), 10),
		kinds:   kinds,
		handler: handler,
		events:  make(chan Event, b.config.BufferSize),
		done:    make(chan struct{}),
		bus:     b,
	}

	b.subs[sub.id] = sub
	if len(kinds) == 0 {
		b.wildcards[sub.id] = sub
	} else {
		for _, k := range kinds {
			if b.byKind[k] == nil {
				b.byKind[k] = make(map[string]*localSub)
			}
			b.byKind[k][sub.id] = sub
		}
	}

	go sub.run()
	return sub
}

// Close shuts down the bus.
func (b *LocalBus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		close(sub.done)
	}
	b.subs = make(map[string]*localSub)
	b.byKind = make(map[string]map[string]*localSub)
	b.wildcards = make(map[string]*localSub)
	return nil
}

func (s *localSub) run() {
	for {
		select {
		case evt := <-s.events:
			s.handler(context.Background(), evt)
		case <-s.done:
			return
		}
	}
}

// Unsubscribe removes the subscription.
func (s *localSub) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if _, ok := s.bus.subs[s.id]; !ok {
		return
	}
	delete(s.bus.subs, s.id)
	delete(s.bus.wildcards, s.id)
	for _, k := range s.kinds {
		if kindSubs, ok := s.bus.byKind[k]; ok {
			delete(kindSubs, s.id)
		}
	}
	close(s.done)
}
