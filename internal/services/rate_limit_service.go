package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/leadintake/internal/cache"
	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/BradenHooton/leadintake/pkg/logger"
)

// AttemptStore persists per-email submission counters.
// cache.MemoryAttemptStore is per process; cache.RedisAttemptStore is shared.
type AttemptStore interface {
	Update(ctx context.Context, key string, fn cache.UpdateFunc) error
}

// SubmissionLimitConfig holds the per-email submission limits
type SubmissionLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// SubmissionLimiter caps how often one email address can submit the public
// form within a sliding window.
type SubmissionLimiter struct {
	store  AttemptStore
	config SubmissionLimitConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewSubmissionLimiter(store AttemptStore, config SubmissionLimitConfig, logger *slog.Logger) *SubmissionLimiter {
	return &SubmissionLimiter{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// IsRateLimited records an attempt for email and reports whether it should
// be rejected. A rejected attempt does not count against the caller and
// does not move the window.
func (l *SubmissionLimiter) IsRateLimited(ctx context.Context, email string) bool {
	now := l.now()
	limited := false

	err := l.store.Update(ctx, email, func(cur models.RateLimitEntry, found bool) (models.RateLimitEntry, bool) {
		limited = false

		if !found || now.Sub(cur.LastAttempt) > l.config.Window {
			return models.RateLimitEntry{Count: 1, LastAttempt: now}, true
		}

		if cur.Count >= l.config.MaxAttempts {
			limited = true
			return cur, false
		}

		return models.RateLimitEntry{Count: cur.Count + 1, LastAttempt: now}, true
	})
	if err != nil {
		// Fail open: a broken store must not take the public form down
		l.logger.Error("failed to record submission attempt",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.Any("error", err))
		rateLimitStoreErrors.Inc()
		return false
	}

	if limited {
		l.logger.Warn("submission rate limited",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.Int("max_attempts", l.config.MaxAttempts),
			slog.Duration("window", l.config.Window))
		leadsRateLimited.Inc()
	}

	return limited
}
