package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AttemptPruner drops rate-limit entries whose last attempt is before cutoff.
type AttemptPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// CleanupManager periodically prunes stale in-memory submission counters.
// An entry older than the window would be reset on its next use anyway, so
// pruning it changes nothing a submitter can observe.
type CleanupManager struct {
	store    AttemptPruner
	window   time.Duration
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	store AttemptPruner,
	window time.Duration,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		store:    store,
		window:   window,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task. It blocks until Stop is called or
// ctx is done.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := cm.store.Prune(cleanupCtx, cm.now().Add(-cm.window))
	if err != nil {
		cm.logger.Error("failed to prune rate limit entries", slog.Any("error", err))
		return
	}

	if removed > 0 {
		cm.logger.Info("rate limit cleanup completed", slog.Int("entries_removed", removed))
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
