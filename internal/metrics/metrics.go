// Package metrics defines the Prometheus collectors for catalog and alarm activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spotify_alarm"

// Metrics groups the application counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	catalogUpdates      prometheus.Counter
	catalogFailures     prometheus.Counter
	alarmsSaved         prometheus.Counter
	alarmDecodeFailures prometheus.Counter
	catalogTracks       prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		catalogUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_updates_total",
			Help:      "Catalog snapshots received from the feed.",
		}),
		catalogFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_failures_total",
			Help:      "Errors reported by the catalog feed.",
		}),
		alarmsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_saved_total",
			Help:      "Alarms written to storage.",
		}),
		alarmDecodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarm_decode_failures_total",
			Help:      "Stored alarm lists that could not be decoded and were treated as empty.",
		}),
		catalogTracks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_tracks",
			Help:      "Tracks in the latest catalog snapshot.",
		}),
	}
}

// CatalogUpdated records a new snapshot with the given number of tracks.
func (m *Metrics) CatalogUpdated(tracks int) {
	if m == nil {
		return
	}
	m.catalogUpdates.Inc()
	m.catalogTracks.Set(float64(tracks))
}

// CatalogFailed records a feed error.
func (m *Metrics) CatalogFailed() {
	if m == nil {
		return
	}
	m.catalogFailures.Inc()
}

// AlarmSaved records a successful alarm write.
func (m *Metrics) AlarmSaved() {
	if m == nil {
		return
	}
	m.alarmsSaved.Inc()
}

// AlarmDecodeFailed records a corrupt alarm list.
func (m *Metrics) AlarmDecodeFailed() {
	if m == nil {
		return
	}
	m.alarmDecodeFailures.Inc()
}
