package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"garland/internal/catalog"
	"garland/internal/config"
	"garland/internal/invite"
	"garland/internal/logging"
	"garland/internal/notifications"
	"garland/internal/services"
	"garland/internal/services/renderer"
	"garland/internal/services/uploader"
)

// Manager runs the render worker pool. Workers claim queued drafts, drive
// them through render and upload, and persist the terminal state.
type Manager struct {
	cfg      *config.Config
	store    *invite.Store
	catalog  *catalog.Service
	renderer renderer.Service
	uploader uploader.Service
	notifier notifications.Service
	logger   *slog.Logger

	pollInterval  time.Duration
	errorInterval time.Duration
	renderTimeout time.Duration
	workerCount   int
	heartbeat     *HeartbeatMonitor

	mu           sync.RWMutex
	running      bool
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	lastErr      error
	lastInviteID string
}

// NewManager constructs a render manager from configuration.
func NewManager(
	cfg *config.Config,
	store *invite.Store,
	catalogSvc *catalog.Service,
	rendererSvc renderer.Service,
	uploaderSvc uploader.Service,
	notifier notifications.Service,
	logger *slog.Logger,
) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workflow.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		cfg:           cfg,
		store:         store,
		catalog:       catalogSvc,
		renderer:      rendererSvc,
		uploader:      uploaderSvc,
		notifier:      notifier,
		logger:        logging.NewComponentLogger(logger, "render-manager"),
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		renderTimeout: time.Duration(cfg.Workflow.RenderTimeoutSeconds) * time.Second,
		workerCount:   workers,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("render manager already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workerCount)
	m.mu.Unlock()

	for i := 0; i < m.workerCount; i++ {
		go m.runWorker(runCtx, i)
	}
	return nil
}

// Stop terminates background processing and waits for workers to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether workers are active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Manager) runWorker(ctx context.Context, workerID int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.String("worker", strconv.Itoa(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// One worker is enough for reclamation.
		if workerID == 0 {
			if err := m.heartbeat.ReclaimStale(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("reclaim stale renders failed; stuck invites may remain",
					logging.Error(err),
					logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
					logging.String(logging.FieldErrorHint, "check database access"))
			}
		}

		inv, err := m.store.ClaimNextDraft(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			logger.Error("failed to claim next invite",
				logging.Error(err),
				logging.String(logging.FieldEventType, "claim_failed"),
				logging.String(logging.FieldErrorHint, "check database access"))
			m.waitOrShutdown(ctx, m.errorInterval)
			continue
		}
		if inv == nil {
			m.waitOrShutdown(ctx, m.pollInterval)
			continue
		}

		m.setLastInvite(inv.ID)
		if err := m.processInvite(ctx, logger, inv); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) processInvite(ctx context.Context, logger *slog.Logger, inv *invite.Invite) error {
	ctx = services.WithInviteID(ctx, inv.ID)
	ctx = services.WithUserID(ctx, inv.UserID)
	logger = logging.WithContext(ctx, logger).With(
		logging.String(logging.FieldTemplateID, inv.TemplateID))
	logger.Info("render started", logging.String(logging.FieldEventType, "render_started"))

	tmpl, err := m.catalog.TemplateByID(ctx, inv.TemplateID)
	if err == nil && tmpl == nil {
		err = fmt.Errorf("template %s no longer available", inv.TemplateID)
	}
	if err != nil {
		m.handleFailure(ctx, logger, inv, "", err)
		return err
	}

	_ = m.notifier.NotifyRenderStarted(ctx, tmpl.Title, inv.ID)

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	var heartbeatWG sync.WaitGroup
	heartbeatWG.Add(1)
	go m.heartbeat.StartLoop(heartbeatCtx, &heartbeatWG, inv.ID)
	defer func() {
		stopHeartbeat()
		heartbeatWG.Wait()
	}()

	renderCtx := ctx
	if m.renderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, m.renderTimeout)
		defer cancel()
	}

	inv.SetProgress("Rendering", "Rendering composition "+tmpl.CompositionID, 10)
	if err := m.store.Update(ctx, inv); err != nil {
		m.handleFailure(ctx, logger, inv, tmpl.Title, err)
		return err
	}

	result, err := m.renderer.Render(renderCtx, renderer.Request{
		InviteID:        inv.ID,
		CompositionID:   tmpl.CompositionID,
		DurationSeconds: tmpl.DurationSeconds,
		Values:          inv.Values,
		MusicChoice:     inv.MusicChoice,
	})
	if err != nil {
		m.handleFailure(ctx, logger, inv, tmpl.Title, err)
		return err
	}

	inv.SetProgress("Uploading", "Publishing rendered video", 80)
	if err := m.store.Update(ctx, inv); err != nil {
		m.handleFailure(ctx, logger, inv, tmpl.Title, err)
		return err
	}

	uploaded, err := m.uploader.Upload(renderCtx, uploader.Request{
		InviteID: inv.ID,
		AssetID:  result.AssetID,
	})
	if err != nil {
		m.handleFailure(ctx, logger, inv, tmpl.Title, err)
		return err
	}

	inv.SetRendered(uploaded.URL)
	if err := m.store.Update(ctx, inv); err != nil {
		m.handleFailure(ctx, logger, inv, tmpl.Title, err)
		return err
	}

	logger.Info("render completed",
		logging.String(logging.FieldEventType, "render_completed"),
		logging.String("video_url", uploaded.URL))
	_ = m.notifier.NotifyRendered(ctx, tmpl.Title, inv.ID, uploaded.URL)
	return nil
}

// handleFailure persists the error state best-effort and preserves the
// original failure for the caller. A persistence failure here must not mask
// the render error, so it is only logged.
func (m *Manager) handleFailure(ctx context.Context, logger *slog.Logger, inv *invite.Invite, templateTitle string, cause error) {
	m.setLastError(cause)

	message := cause.Error()
	if errors.Is(cause, context.Canceled) {
		message = invite.ShutdownStopReason
	}
	inv.SetFailed(message)

	persistCtx := ctx
	if persistCtx.Err() != nil {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := m.store.Update(persistCtx, inv); err != nil {
		logger.Error("failed to persist render failure",
			logging.Error(err),
			logging.String(logging.FieldEventType, "failure_persist_failed"),
			logging.String(logging.FieldErrorHint, "invite may be reclaimed by heartbeat monitor"))
	}

	logger.Error("render failed",
		logging.Error(cause),
		logging.String(logging.FieldEventType, "render_failed"),
		logging.String(logging.FieldErrorKind, services.Kind(cause)))
	_ = m.notifier.NotifyRenderFailed(persistCtx, templateTitle, inv.ID, message)
}

func (m *Manager) waitOrShutdown(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		delay = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastInvite(id string) {
	m.mu.Lock()
	m.lastInviteID = id
	m.mu.Unlock()
}
