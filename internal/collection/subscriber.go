package collection

import (
	"sync"

	"go.uber.org/zap"

	"github.com/justestif/go-spotify-alarm/internal/catalog"
	"github.com/justestif/go-spotify-alarm/internal/metrics"
)

// Subscriber follows an upstream catalog feed, keeps the latest snapshot
// and republishes every snapshot to its own subscribers in arrival order.
// Upstream errors are logged and never forwarded. Subscriber is itself a
// catalog.Feed.
type Subscriber struct {
	feed    catalog.Feed
	out     *catalog.Hub
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	snapshot *catalog.Map

	// lifecycle guards sub and done.
	lifecycle sync.Mutex
	sub       catalog.Subscription
	done      chan struct{}
}

// SubscriberOption configures a Subscriber.
type SubscriberOption func(*Subscriber)

// WithSubscriberLogger sets the logger.
func WithSubscriberLogger(l *zap.Logger) SubscriberOption {
	return func(s *Subscriber) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSubscriberMetrics sets the metrics recorder.
func WithSubscriberMetrics(m *metrics.Metrics) SubscriberOption {
	return func(s *Subscriber) {
		s.metrics = m
	}
}

// NewSubscriber creates a subscriber for feed. Call Start to begin following it.
func NewSubscriber(feed catalog.Feed, opts ...SubscriberOption) *Subscriber {
	s := &Subscriber{
		feed:   feed,
		out:    catalog.NewHub(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to the upstream feed. It is a no-op while already subscribed.
func (s *Subscriber) Start() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.sub != nil {
		return
	}

	sub := s.feed.Subscribe()
	done := make(chan struct{})
	s.sub = sub
	s.done = done

	go s.relay(sub, done)
}

// Stop releases the upstream subscription and waits for the relay to
// finish. Snapshots already handed to local subscribers are not recalled.
// Stop is a no-op when not subscribed.
func (s *Subscriber) Stop() {
	s.lifecycle.Lock()
	sub, done := s.sub, s.done
	s.sub, s.done = nil, nil
	s.lifecycle.Unlock()

	if sub == nil {
		return
	}
	sub.Unsubscribe()
	<-done
}

// Close stops the subscriber and completes its own output feed.
func (s *Subscriber) Close() {
	s.Stop()
	s.out.Complete()
}

// Snapshot returns the latest catalog snapshot, or nil if none has arrived yet.
func (s *Subscriber) Snapshot() *catalog.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe implements catalog.Feed for local observers.
// Only snapshots received after subscribing are delivered.
func (s *Subscriber) Subscribe() catalog.Subscription {
	return s.out.Subscribe()
}

func (s *Subscriber) relay(sub catalog.Subscription, done chan struct{}) {
	defer close(done)

	for ev := range sub.Events() {
		if ev.Err != nil {
			s.metrics.CatalogFailed()
			s.logger.Warn("catalog feed reported an error", zap.Error(ev.Err))
			continue
		}

		s.mu.Lock()
		s.snapshot = ev.Map
		s.mu.Unlock()

		s.metrics.CatalogUpdated(ev.Map.TrackCount())
		s.out.Publish(ev.Map)
	}

	s.lifecycle.Lock()
	completed := s.sub == sub
	if completed {
		// Upstream finished on its own; allow a later Start to resubscribe.
		s.sub, s.done = nil, nil
	}
	s.lifecycle.Unlock()

	if completed {
		s.logger.Info("catalog feed completed")
	}
}
