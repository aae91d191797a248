package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Common errors.
var (
	// ErrRefreshTooRecent is returned when a refresh is requested within the cooldown period.
	ErrRefreshTooRecent = errors.New("catalog refresh attempted too recently")
)

const (
	// DefaultRefreshInterval is how often Run refetches the catalog.
	DefaultRefreshInterval = 15 * time.Minute

	// DefaultRefreshCooldown is the minimum time between on-demand refreshes.
	DefaultRefreshCooldown = 1 * time.Minute
)

// Fetcher loads a full catalog snapshot from the music service.
type Fetcher interface {
	FetchCatalog(ctx context.Context) (*Map, error)
}

// Manager owns the catalog: it fetches snapshots from a Fetcher and
// publishes them to subscribers. New subscribers receive the latest
// snapshot immediately.
type Manager struct {
	fetcher         Fetcher
	hub             *Hub
	logger          *zap.Logger
	refreshInterval time.Duration
	refreshCooldown time.Duration
	now             func() time.Time

	mu          sync.Mutex
	lastRefresh time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithRefreshInterval sets how often Run refetches the catalog.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.refreshInterval = d
		}
	}
}

// WithRefreshCooldown sets the minimum time between on-demand refreshes.
func WithRefreshCooldown(d time.Duration) Option {
	return func(m *Manager) {
		m.refreshCooldown = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a catalog manager.
func NewManager(fetcher Fetcher, opts ...Option) *Manager {
	m := &Manager{
		fetcher:         fetcher,
		hub:             NewHub(WithReplay()),
		logger:          zap.NewNop(),
		refreshInterval: DefaultRefreshInterval,
		refreshCooldown: DefaultRefreshCooldown,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RefreshResult contains the result of a refresh.
type RefreshResult struct {
	Playlists   int       `json:"playlists"`
	Tracks      int       `json:"tracks"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Subscribe implements Feed.
func (m *Manager) Subscribe() Subscription {
	return m.hub.Subscribe()
}

// Latest returns the most recent snapshot, or nil if none was fetched yet.
func (m *Manager) Latest() *Map {
	return m.hub.Latest()
}

// CanRefresh reports whether an on-demand refresh is allowed now.
// When it is not, it also returns the time the next refresh becomes available.
func (m *Manager) CanRefresh() (bool, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canRefreshLocked()
}

func (m *Manager) canRefreshLocked() (bool, time.Time) {
	if m.lastRefresh.IsZero() {
		return true, time.Time{}
	}
	next := m.lastRefresh.Add(m.refreshCooldown)
	if m.now().Before(next) {
		return false, next
	}
	return true, time.Time{}
}

// Refresh fetches the catalog now and publishes it.
// Returns ErrRefreshTooRecent if called within the cooldown period.
func (m *Manager) Refresh(ctx context.Context) (*RefreshResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ok, next := m.canRefreshLocked(); !ok {
		return nil, fmt.Errorf("%w: next refresh available at %s", ErrRefreshTooRecent, next.Format(time.RFC3339))
	}
	return m.fetchLocked(ctx)
}

// Run fetches the catalog immediately and then on every refresh interval
// until ctx is cancelled, at which point the feed is completed.
// Fetch failures are published to subscribers and do not stop Run.
func (m *Manager) Run(ctx context.Context) error {
	defer m.hub.Complete()

	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	m.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("catalog manager stopped")
			return nil
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

func (m *Manager) refresh(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Errors are already logged and published.
	_, _ = m.fetchLocked(ctx)
}

func (m *Manager) fetchLocked(ctx context.Context) (*RefreshResult, error) {
	snapshot, err := m.fetcher.FetchCatalog(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.hub.Fail(err)
			m.logger.Warn("fetching catalog failed", zap.Error(err))
		}
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}

	m.lastRefresh = m.now()
	m.hub.Publish(snapshot)

	result := &RefreshResult{
		Playlists:   snapshot.Len(),
		Tracks:      snapshot.TrackCount(),
		RefreshedAt: m.lastRefresh,
	}
	m.logger.Info("catalog refreshed",
		zap.Int("playlists", result.Playlists),
		zap.Int("tracks", result.Tracks),
	)
	return result, nil
}
