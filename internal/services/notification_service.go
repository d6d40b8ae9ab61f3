package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/leadintake/internal/models"
)

// Notifier is told about every stored lead. Implementations send the
// confirmation email and push the lead into the CRM.
type Notifier interface {
	Name() string
	NotifyLeadSubmitted(ctx context.Context, lead *models.Lead) error
}

// NotificationDispatcher fans a stored lead out to every notifier in the
// background. Failures are logged and counted, never returned to the
// submitter.
type NotificationDispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    *slog.Logger
	wg        sync.WaitGroup
}

func NewNotificationDispatcher(timeout time.Duration, logger *slog.Logger, notifiers ...Notifier) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Dispatch returns immediately. The notifiers run with their own deadline so
// a finished HTTP request doesn't cancel them.
func (d *NotificationDispatcher) Dispatch(lead *models.Lead) {
	if d == nil || len(d.notifiers) == 0 {
		return
	}

	snapshot := *lead
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := n.NotifyLeadSubmitted(ctx, &snapshot); err != nil {
				notificationErrors.WithLabelValues(n.Name()).Inc()
				d.logger.Error("lead notification failed",
					slog.String("notifier", n.Name()),
					slog.String("lead_id", snapshot.ID),
					slog.Any("error", err))
				return
			}

			d.logger.Debug("lead notification sent",
				slog.String("notifier", n.Name()),
				slog.String("lead_id", snapshot.ID))
		}(n)
	}
}

// Wait blocks until in-flight notifications finish. Called on shutdown.
func (d *NotificationDispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
