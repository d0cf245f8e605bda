package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"clipcart/internal/config"
	"clipcart/internal/logging"
	"clipcart/internal/notifications"
	"clipcart/internal/stage"
	"clipcart/internal/store"
)

// Manager coordinates pipeline processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *store.Store
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration
	stages       []stage.Handler

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager over the given stages, which run in
// the order provided.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notifications.Service, stages ...stage.Handler) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	pollInterval := time.Duration(cfg.Workflow.PollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Manager{
		cfg:          cfg,
		store:        st,
		logger:       logging.WithComponent(logger, "workflow"),
		notifier:     notifier,
		pollInterval: pollInterval,
		stages:       stages,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for the current pass to
// finish.
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

// Running reports whether the manager loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// LastError returns the most recent stage pass failure, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()
	for {
		m.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}
	}
}

// RunOnce executes a single pass of every stage in pipeline order. A failing
// stage is reported and does not block the stages after it.
func (m *Manager) RunOnce(ctx context.Context) {
	for _, handler := range m.stages {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := handler.RunPass(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.logger.Error("stage pass failed",
				logging.String(logging.FieldStage, handler.Name()),
				logging.Error(err))
			if notifyErr := m.notifier.Publish(ctx, notifications.EventPipelineError, notifications.Payload{
				"stage": handler.Name(),
				"error": err.Error(),
			}); notifyErr != nil {
				m.logger.Warn("notification failed", logging.Error(notifyErr))
			}
			continue
		}
		m.logger.Debug("stage pass complete",
			logging.String(logging.FieldStage, handler.Name()),
			logging.Duration("elapsed", time.Since(start)))
	}
}

// Health reports the readiness of every registered stage plus the store.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(m.stages)+1)
	if err := m.store.Health(ctx); err != nil {
		results = append(results, stage.Unhealthy("store", err.Error()))
	} else {
		results = append(results, stage.Healthy("store"))
	}
	for _, handler := range m.stages {
		results = append(results, handler.HealthCheck(ctx))
	}
	return results
}
