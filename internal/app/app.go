// Package app assembles the hub from configuration: stores, services, the
// backup target and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/capstonehub/capstone-hub/internal/backup"
	"github.com/capstonehub/capstone-hub/internal/blob"
	"github.com/capstonehub/capstone-hub/internal/blob/fs"
	blobmemory "github.com/capstonehub/capstone-hub/internal/blob/memory"
	blobs3 "github.com/capstonehub/capstone-hub/internal/blob/s3"
	"github.com/capstonehub/capstone-hub/internal/config"
	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	"github.com/capstonehub/capstone-hub/internal/domain/session"
	"github.com/capstonehub/capstone-hub/internal/memory"
	"github.com/capstonehub/capstone-hub/internal/ratelimit"
	"github.com/capstonehub/capstone-hub/internal/sqlstore"
	"github.com/capstonehub/capstone-hub/internal/transport"
)

// Stores holds the repositories behind the services.
type Stores struct {
	Records  entity.Repository
	Sessions session.Repository
	Activity activity.Repository
	// DB is nil for the memory driver.
	DB *sqlstore.DB
}

// Close releases the database connection, if any.
func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenStores opens the configured database and brings its schema up to date.
func OpenStores(ctx context.Context, cfg config.DBConfig) (*Stores, error) {
	var db *sqlstore.DB
	var err error
	switch cfg.Driver {
	case "memory":
		return &Stores{
			Records:  memory.NewRecordRepository(),
			Sessions: memory.NewSessionRepository(),
			Activity: memory.NewActivityRepository(),
		}, nil
	case "sqlite":
		if err := ensureDBDir(cfg.Path); err != nil {
			return nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err = sqlstore.Open(ctx, sqlstore.SQLite, cfg.Path)
	case "postgres":
		db, err = sqlstore.Open(ctx, sqlstore.Postgres, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, entity.Catalog()...); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Stores{
		Records:  sqlstore.NewRecordRepository(db),
		Sessions: sqlstore.NewSessionRepository(db),
		Activity: sqlstore.NewActivityRepository(db),
		DB:       db,
	}, nil
}

// OpenBlobStore returns the store backups are written to.
func OpenBlobStore(ctx context.Context, cfg config.BackupConfig) (blob.Store, error) {
	switch blob.Driver(cfg.Driver) {
	case blob.DriverFilesystem:
		return fs.New(cfg.Dir)
	case blob.DriverMemory:
		return blobmemory.New(), nil
	case blob.DriverS3:
		return blobs3.New(ctx, blobs3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown backup driver %q", cfg.Driver)
	}
}

// App is a fully wired hub.
type App struct {
	Config   config.Config
	Stores   *Stores
	Entities *entity.Service
	Sessions *session.Service
	Activity *activity.Service
	Backups  *backup.Service
	Blobs    blob.Store
	Metrics  *transport.Metrics
	Handler  http.Handler

	limiter *ratelimit.MemoryRateLimiter
	logger  *slog.Logger
}

// Option adjusts an App before its handler is built.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock replaces the wall clock for sessions, rate limits and backups.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// New builds the application. Close releases what it opened.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	creds, err := auth.NewCredentialStore(
		auth.Secret{Hash: cfg.Auth.AdminPasswordHash, Plain: cfg.Auth.AdminPassword},
		auth.Secret{Hash: cfg.Auth.ViewerPasswordHash, Plain: cfg.Auth.ViewerPassword},
	)
	if err != nil {
		return nil, err
	}

	stores, err := OpenStores(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	blobStore, err := OpenBlobStore(ctx, cfg.Backup)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("open backup store: %w", err)
	}

	limiter, err := ratelimit.NewMemoryRateLimiter(ratelimit.Config{
		Limit:  cfg.RateLimit.LoginAttempts,
		Window: cfg.RateLimit.LoginWindow,
		Clock:  o.clock,
	})
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	hashKey := []byte(cfg.Session.SigningKey)
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		if hashKey == nil {
			_ = limiter.Close()
			_ = stores.Close()
			return nil, errors.New("generate session signing key")
		}
		logger.Warn("no session signing key configured; sessions will not survive a restart")
	}

	activitySvc := activity.NewService(stores.Activity, logger)
	entitySvc := entity.NewService(stores.Records, activitySvc, logger).WithClock(o.clock)
	sessionSvc := session.NewService(stores.Sessions, session.Config{
		IdleTimeout: cfg.Session.IdleTimeout,
		Clock:       o.clock,
	}, logger)
	backupSvc := backup.NewService(entitySvc, blobStore, activitySvc, backup.Config{
		Keep:        cfg.Backup.Keep,
		MinInterval: cfg.Backup.MinInterval,
		Clock:       o.clock,
	}, logger)
	metrics := transport.NewMetrics()

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	handler := transport.NewServer(transport.Config{
		Entities:     entitySvc,
		Sessions:     sessionSvc,
		Activity:     activitySvc,
		Credentials:  creds,
		LoginLimiter: limiter,
		Backups:      backupSvc,
		Metrics:      metrics,
		Cookie: transport.CookieConfig{
			Name:    cfg.Session.CookieName,
			HashKey: hashKey,
			Secure:  cfg.Session.CookieSecure,
		},
		Security:    cfg.Security,
		RateLimit:   cfg.RateLimit,
		Debug:       cfg.Debug,
		TrustProxy:  cfg.Server.TrustProxy,
		MetricsPath: metricsPath,
		Logger:      logger,
		StartedAt:   o.clock(),
	})

	logger.Info("application ready",
		"db_driver", cfg.DB.Driver,
		"backup_driver", blobStore.Driver(),
		"debug_routes", cfg.Debug.Enabled,
		"viewer_enabled", creds.ViewerEnabled(),
	)

	return &App{
		Config:   cfg,
		Stores:   stores,
		Entities: entitySvc,
		Sessions: sessionSvc,
		Activity: activitySvc,
		Backups:  backupSvc,
		Blobs:    blobStore,
		Metrics:  metrics,
		Handler:  handler,
		limiter:  limiter,
		logger:   logger,
	}, nil
}

// PurgeSessions deletes idle sessions every interval until ctx is done.
func (a *App) PurgeSessions(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Sessions.PurgeIdle(ctx); err != nil {
				a.logger.Warn("session purge failed", "error", err)
			}
		}
	}
}

// Close stops background work and closes the database.
func (a *App) Close() error {
	return errors.Join(a.limiter.Close(), a.Stores.Close())
}

func ensureDBDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
