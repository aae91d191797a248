// Package collection is the search and alarm layer over the playlist catalog:
// it follows the catalog feed, filters the latest snapshot and stores alarms.
package collection

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/go-spotify-alarm/internal/alarm"
	"github.com/justestif/go-spotify-alarm/internal/catalog"
	"github.com/justestif/go-spotify-alarm/internal/metrics"
	"github.com/justestif/go-spotify-alarm/internal/storage"
)

// Collection combines a catalog Subscriber with the alarm repository.
type Collection struct {
	subscriber *Subscriber
	alarms     *alarm.Repository
	logger     *zap.Logger

	// alarmMu serialises the read-modify-write cycles on the alarm list.
	alarmMu sync.Mutex
}

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Collection.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates a collection following feed and storing alarms in store.
// It subscribes immediately; the caller must Close it.
func New(feed catalog.Feed, store storage.Store, opts ...Option) *Collection {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collection{
		subscriber: NewSubscriber(feed,
			WithSubscriberLogger(o.logger.Named("subscriber")),
			WithSubscriberMetrics(o.metrics),
		),
		alarms: alarm.NewRepository(store,
			alarm.WithLogger(o.logger.Named("alarms")),
			alarm.WithMetrics(o.metrics),
		),
		logger: o.logger,
	}
	c.subscriber.Start()
	return c
}

// Close releases the catalog subscription.
func (c *Collection) Close() error {
	c.subscriber.Close()
	return nil
}

// Subscriber returns the catalog subscriber.
func (c *Collection) Subscriber() *Subscriber {
	return c.subscriber
}

// Updates subscribes to catalog snapshots as they arrive.
func (c *Collection) Updates() catalog.Subscription {
	return c.subscriber.Subscribe()
}

// Snapshot returns the latest catalog snapshot, or nil.
func (c *Collection) Snapshot() *catalog.Map {
	return c.subscriber.Snapshot()
}

// FilterTracksBy filters the latest snapshot. Before the first snapshot
// arrives the result is empty.
func (c *Collection) FilterTracksBy(mode FilterType, searchText string) []catalog.PlaylistTrack {
	return Filter(c.subscriber.Snapshot(), mode, searchText)
}

// Playlists lists the playlists of the latest snapshot.
func (c *Collection) Playlists() []catalog.Playlist {
	playlists := c.subscriber.Snapshot().Playlists()
	if playlists == nil {
		playlists = []catalog.Playlist{}
	}
	return playlists
}

// FindTrack looks up a track within a playlist of the latest snapshot.
func (c *Collection) FindTrack(playlistID, trackID string) (catalog.Playlist, catalog.PlaylistTrack, bool) {
	entry, ok := c.subscriber.Snapshot().Playlist(playlistID)
	if !ok {
		return catalog.Playlist{}, catalog.PlaylistTrack{}, false
	}
	for _, pt := range entry.Tracks {
		if pt.Track.ID == trackID {
			return entry.Playlist, pt, true
		}
	}
	return catalog.Playlist{}, catalog.PlaylistTrack{}, false
}

// AddAlarm stores a at the scheduled time, replacing an alarm set for the
// same time. With no scheduled time nothing happens. Unreadable stored
// alarms are discarded; only storage I/O failures are returned.
func (c *Collection) AddAlarm(ctx context.Context, a alarm.Alarm, scheduled *time.Time) error {
	if scheduled == nil {
		c.logger.Debug("no scheduled time, alarm not added")
		return nil
	}

	c.alarmMu.Lock()
	defer c.alarmMu.Unlock()
	return c.alarms.Add(ctx, a, scheduled)
}

// RemoveAlarm deletes the alarm scheduled at date and reports whether one existed.
func (c *Collection) RemoveAlarm(ctx context.Context, date time.Time) (bool, error) {
	c.alarmMu.Lock()
	defer c.alarmMu.Unlock()
	return c.alarms.Remove(ctx, date)
}

// Alarms returns the stored alarms.
func (c *Collection) Alarms(ctx context.Context) ([]alarm.Alarm, error) {
	c.alarmMu.Lock()
	defer c.alarmMu.Unlock()
	return c.alarms.List(ctx)
}
