package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/go-spotify-alarm/internal/metrics"
	"github.com/justestif/go-spotify-alarm/internal/storage"
)

// Repository reads and writes the alarm list in a key-value store.
// The whole list is rewritten on every change. Repository does not
// serialise its callers: concurrent Add or Remove calls must be
// guarded externally.
type Repository struct {
	store   storage.Store
	key     string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Repository.
type Option func(*Repository)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) {
		r.metrics = m
	}
}

// NewRepository creates a repository on top of store.
func NewRepository(store storage.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		key:    StorageKey,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads the stored alarm list.
// It returns (nil, nil) when nothing is stored and (nil, *DecodeError)
// when the stored data is corrupt. Other errors come from the store.
func (r *Repository) Load(ctx context.Context) ([]Alarm, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading alarms: %w", err)
	}
	return Decode(data)
}

// List returns the stored alarms. Corrupt data is treated as no alarms.
func (r *Repository) List(ctx context.Context) ([]Alarm, error) {
	alarms, err := r.loadOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	if alarms == nil {
		alarms = []Alarm{}
	}
	return alarms, nil
}

// Add stores a at the scheduled time, replacing any alarm already set
// for exactly that time. A nil scheduled time makes Add a no-op.
// Missing or corrupt stored data counts as an empty list.
func (r *Repository) Add(ctx context.Context, a Alarm, scheduled *time.Time) error {
	if scheduled == nil {
		return nil
	}

	alarms, err := r.loadOrEmpty(ctx)
	if err != nil {
		return err
	}

	kept := alarms[:0]
	for _, existing := range alarms {
		if !existing.Date.Equal(*scheduled) {
			kept = append(kept, existing)
		}
	}

	a.Date = *scheduled
	kept = append(kept, a)

	if err := r.save(ctx, kept); err != nil {
		return err
	}

	r.metrics.AlarmSaved()
	r.logger.Info("alarm saved",
		zap.Time("date", a.Date),
		zap.String("track", a.TrackName),
		zap.Int("alarms", len(kept)),
	)
	return nil
}

// Remove deletes the alarm scheduled at date. It reports whether one was found.
func (r *Repository) Remove(ctx context.Context, date time.Time) (bool, error) {
	alarms, err := r.loadOrEmpty(ctx)
	if err != nil {
		return false, err
	}

	kept := alarms[:0]
	for _, existing := range alarms {
		if !existing.Date.Equal(date) {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(alarms) {
		return false, nil
	}

	if err := r.save(ctx, kept); err != nil {
		return false, err
	}
	r.logger.Info("alarm removed", zap.Time("date", date))
	return true, nil
}

// loadOrEmpty collapses "nothing stored" and "corrupt data" into an empty list.
func (r *Repository) loadOrEmpty(ctx context.Context) ([]Alarm, error) {
	alarms, err := r.Load(ctx)

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		r.metrics.AlarmDecodeFailed()
		r.logger.Warn("stored alarms unreadable, starting from an empty list", zap.Error(err))
		return nil, nil
	}
	return alarms, err
}

func (r *Repository) save(ctx context.Context, alarms []Alarm) error {
	data, err := Encode(alarms)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("writing alarms: %w", err)
	}
	return nil
}
