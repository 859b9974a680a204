package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"garland/internal/auth"
	"garland/internal/catalog"
	"garland/internal/config"
	"garland/internal/invite"
	"garland/internal/logging"
	"garland/internal/notifications"
	"garland/internal/render"
	"garland/internal/server"
	"garland/internal/services/musicllm"
	"garland/internal/services/renderer"
	"garland/internal/services/uploader"
)

// Daemon wires the invite store, template catalog, render workers, and HTTP
// API together and enforces single-instance execution through a lock file.
type Daemon struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *invite.Store
	catalogStore *catalog.Store
	catalog      *catalog.Service
	manager      *render.Manager
	server       *server.Server
	notifier     notifications.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Render       render.StatusSummary
	DatabasePath string
	LockFilePath string
	APIAddress   string
}

// New constructs a daemon with initialized dependencies. The invite store and
// template catalog share the sqlite database at cfg.DatabasePath().
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := invite.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open invite store: %w", err)
	}
	catalogStore, err := catalog.OpenStore(cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open template store: %w", err)
	}

	// First boot ships the builtin templates so the API has a catalog to
	// serve before an admin ever runs a seed.
	count, err := catalogStore.Count(context.Background())
	if err != nil {
		store.Close()
		catalogStore.Close()
		return nil, fmt.Errorf("inspect template store: %w", err)
	}
	if count == 0 {
		seeded, err := catalog.Seed(context.Background(), catalogStore)
		if err != nil {
			store.Close()
			catalogStore.Close()
			return nil, fmt.Errorf("seed template store: %w", err)
		}
		logger.Info("seeded builtin templates", logging.Int("template_count", seeded))
	}

	ttl := time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second
	catalogSvc := catalog.NewService(catalogStore, ttl, logger)
	notifier := notifications.NewService(cfg)

	rendererClient := renderer.NewClient(renderer.Config{
		BaseURL:        cfg.Renderer.BaseURL,
		TimeoutSeconds: cfg.Renderer.TimeoutSeconds,
	})
	uploaderClient := uploader.NewClient(uploader.Config{
		BaseURL:        cfg.Uploader.BaseURL,
		KeyPrefix:      cfg.Uploader.KeyPrefix,
		TimeoutSeconds: cfg.Uploader.TimeoutSeconds,
	})
	suggester := musicllm.NewClient(musicllm.Config{
		APIKey:         cfg.Music.APIKey,
		BaseURL:        cfg.Music.BaseURL,
		Model:          cfg.Music.Model,
		Referer:        cfg.Music.Referer,
		Title:          cfg.Music.Title,
		TimeoutSeconds: cfg.Music.TimeoutSeconds,
	})

	manager := render.NewManager(cfg, store, catalogSvc, rendererClient, uploaderClient, notifier, logger)
	orchestrator := render.NewOrchestrator(catalogSvc, store, logger)
	apiServer := server.New(cfg, orchestrator, catalogSvc, catalogStore, auth.NewTokenProvider(cfg), suggester, manager, notifier, logger)

	lockPath := filepath.Join(cfg.Paths.DataDir, "garland.lock")
	return &Daemon{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "daemon"),
		store:        store,
		catalogStore: catalogStore,
		catalog:      catalogSvc,
		manager:      manager,
		server:       apiServer,
		notifier:     notifier,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the render workers and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another garland daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.manager.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start render manager: %w", err)
	}
	if err := d.server.Start(runCtx); err != nil {
		d.manager.Stop()
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("database", d.cfg.DatabasePath()),
		logging.String("lock_file", d.lockPath))
	return nil
}

// Stop halts the API server and render workers and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.server.Stop()
	d.manager.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon if needed and releases database resources.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if err := d.catalogStore.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns runtime information for operators.
func (d *Daemon) Status(ctx context.Context) Status {
	summary, err := d.manager.StatusSummary(ctx)
	if err != nil {
		d.logger.Warn("collect render status", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		Render:       summary,
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		APIAddress:   d.server.Addr(),
	}
}
