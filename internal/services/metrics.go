package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_submitted_total",
			Help: "Total number of leads stored, by visa type",
		},
		[]string{"visa_type"},
	)

	leadsRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_submissions_rate_limited_total",
			Help: "Total number of submissions rejected by the per-email limiter",
		},
	)

	rateLimitStoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_store_errors_total",
			Help: "Total number of attempt store failures (the limiter fails open)",
		},
	)

	leadStatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_status_updates_total",
			Help: "Total number of lead status changes, by new status",
		},
		[]string{"status"},
	)

	notificationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notification_errors_total",
			Help: "Total number of failed lead notifications",
		},
		[]string{"notifier"},
	)
)
