package catalog

import (
	"sync"
)

// Event is one emission of a catalog feed: either a new snapshot or a
// failure. Failures do not end the feed; completion is signalled by
// closing the events channel.
type Event struct {
	Map *Map
	Err error
}

// Subscription is a live registration on a Feed.
type Subscription interface {
	// Events delivers emissions in publish order. The channel is closed
	// when the feed completes or the subscription is released.
	Events() <-chan Event
	// Unsubscribe releases the subscription. Safe to call more than once.
	Unsubscribe()
}

// Feed is a subscribable stream of catalog snapshots.
type Feed interface {
	Subscribe() Subscription
}

// Hub fans catalog events out to any number of subscribers.
// Every subscriber has its own unbounded queue, so a slow reader never
// blocks Publish and never loses or reorders events.
type Hub struct {
	mu        sync.Mutex
	replay    bool
	latest    *Map
	completed bool
	subs      map[*subscription]struct{}
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithReplay makes new subscribers receive the latest snapshot first.
func WithReplay() HubOption {
	return func(h *Hub) {
		h.replay = true
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs: make(map[*subscription]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new subscriber. Subscribing to a completed hub
// yields a subscription whose channel closes right away (after the
// replayed snapshot, if any).
func (h *Hub) Subscribe() Subscription {
	s := newSubscription(h)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.replay && h.latest != nil {
		s.push(Event{Map: h.latest})
	}
	if h.completed {
		s.finish()
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish records m as the latest snapshot and delivers it to every subscriber.
func (h *Hub) Publish(m *Map) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.completed {
		return
	}
	h.latest = m
	for s := range h.subs {
		s.push(Event{Map: m})
	}
}

// Fail delivers a non-terminal error to every subscriber.
func (h *Hub) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.completed {
		return
	}
	for s := range h.subs {
		s.push(Event{Err: err})
	}
}

// Complete ends the feed. Queued events are still delivered, then every
// subscriber's channel is closed. Later Publish and Fail calls are ignored.
func (h *Hub) Complete() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.completed {
		return
	}
	h.completed = true
	for s := range h.subs {
		s.finish()
	}
	clear(h.subs)
}

// Latest returns the most recently published snapshot, or nil.
func (h *Hub) Latest() *Map {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

func (h *Hub) remove(s *subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// subscription queues events for one subscriber and pumps them to out.
type subscription struct {
	hub *Hub
	out chan Event

	mu       sync.Mutex
	queue    []Event
	finished bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newSubscription(h *Hub) *subscription {
	s := &subscription{
		hub:  h,
		out:  make(chan Event),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *subscription) Events() <-chan Event {
	return s.out
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.done)
	})
}

func (s *subscription) push(ev Event) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.notify()
}

func (s *subscription) finish() {
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
	s.notify()
}

func (s *subscription) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			finished := s.finished
			s.mu.Unlock()
			if finished {
				return
			}
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		ev := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}
