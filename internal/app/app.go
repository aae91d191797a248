// Package app wires configuration, storage, Spotify and the HTTP API into
// the commands of the spotify-alarm binary.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-spotify-alarm/internal/alarm"
	"github.com/justestif/go-spotify-alarm/internal/auth"
	"github.com/justestif/go-spotify-alarm/internal/catalog"
	"github.com/justestif/go-spotify-alarm/internal/collection"
	"github.com/justestif/go-spotify-alarm/internal/config"
	"github.com/justestif/go-spotify-alarm/internal/db"
	"github.com/justestif/go-spotify-alarm/internal/logger"
	"github.com/justestif/go-spotify-alarm/internal/metrics"
	"github.com/justestif/go-spotify-alarm/internal/spotify"
	"github.com/justestif/go-spotify-alarm/internal/storage"
	"github.com/justestif/go-spotify-alarm/internal/web"
)

// NewLogger builds the process logger from cfg.
func NewLogger(cfg *config.Config) *zap.Logger {
	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	return logger.New(level)
}

// OpenStore opens the key-value store selected by cfg. The returned
// function releases it.
func OpenStore(ctx context.Context, cfg config.Store) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		return storage.NewMemory(), noop, nil
	case config.DriverFile, "":
		return storage.NewFile(cfg.Path), noop, nil
	case config.DriverSQLite:
		s, err := storage.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverPostgres:
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg.KV(), func() error { pg.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewAuthenticator builds the Spotify authenticator from cfg and the environment.
func NewAuthenticator(cfg *config.Config, log *zap.Logger, out io.Writer) (*auth.Authenticator, error) {
	creds, err := auth.CredentialsFromEnv()
	if err != nil {
		return nil, err
	}
	return auth.New(creds, cfg.Spotify.RedirectURL, auth.NewFileTokenCache(cfg.Spotify.TokenPath),
		auth.WithLogger(log),
		auth.WithOutput(out),
	)
}

func connect(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) (*spotify.Client, error) {
	authenticator, err := NewAuthenticator(cfg, log, out)
	if err != nil {
		return nil, err
	}

	api, err := authenticator.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	return spotify.New(api, spotify.WithLogger(log)), nil
}

// Serve runs the catalog manager and the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	client, err := connect(ctx, cfg, log, out)
	if err != nil {
		return err
	}

	store, closeStore, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing store failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	manager := catalog.NewManager(client,
		catalog.WithRefreshInterval(cfg.RefreshInterval),
		catalog.WithRefreshCooldown(cfg.RefreshCooldown),
		catalog.WithLogger(log.Named("catalog")),
	)

	coll := collection.New(manager, store,
		collection.WithLogger(log.Named("collection")),
		collection.WithMetrics(m),
	)
	defer func() { _ = coll.Close() }()

	server := web.NewServer(web.ServerConfig{
		Addr:     cfg.ListenAddr,
		Logger:   log.Named("http"),
		Gatherer: reg,
	}, coll, manager)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return manager.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })
	return g.Wait()
}

// Search fetches the catalog once and returns the tracks matching query under mode.
func Search(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer, mode collection.FilterType, query string) ([]catalog.PlaylistTrack, *catalog.Map, error) {
	client, err := connect(ctx, cfg, log, out)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := client.FetchCatalog(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching catalog: %w", err)
	}
	return collection.Filter(snapshot, mode, query), snapshot, nil
}

// ListAlarms returns the stored alarms.
func ListAlarms(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]alarm.Alarm, error) {
	var alarms []alarm.Alarm
	err := withRepository(ctx, cfg, log, func(repo *alarm.Repository) error {
		var err error
		alarms, err = repo.List(ctx)
		return err
	})
	return alarms, err
}

// ErrNoAlarm is returned by RemoveAlarm when nothing is scheduled at the date.
var ErrNoAlarm = errors.New("no alarm scheduled at that date")

// RemoveAlarm deletes the alarm scheduled at date.
func RemoveAlarm(ctx context.Context, cfg *config.Config, log *zap.Logger, date time.Time) error {
	return withRepository(ctx, cfg, log, func(repo *alarm.Repository) error {
		removed, err := repo.Remove(ctx, date)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNoAlarm
		}
		return nil
	})
}

// Logout removes the cached Spotify token.
func Logout(ctx context.Context, cfg *config.Config) error {
	return auth.NewFileTokenCache(cfg.Spotify.TokenPath).Delete(ctx)
}

func withRepository(ctx context.Context, cfg *config.Config, log *zap.Logger, fn func(*alarm.Repository) error) error {
	store, closeStore, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = closeStore() }()

	return fn(alarm.NewRepository(store, alarm.WithLogger(log)))
}
