// Package metrics defines and registers all custom Prometheus metrics for the
// ridefare API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto, so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ridefare"

// ── Comparison metrics ────────────────────────────────────────────────────────

// ComparisonsTotal counts one-off price comparisons.
// Label:
//   - result: "ok", "unavailable" (route could not be resolved) or "error"
var ComparisonsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comparisons_total",
		Help:      "Total number of price comparisons, labelled by result.",
	},
	[]string{"result"},
)

// ── Tracking metrics ──────────────────────────────────────────────────────────

// PriceChecksTotal counts scheduled and immediate checks of tracked routes.
// Label:
//   - result: "above_target", "target_hit", "skipped", "gone" or "error"
var PriceChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_checks_total",
		Help:      "Total number of tracked-route price checks, labelled by result.",
	},
	[]string{"result"},
)

// PriceCheckDuration measures one check from lock to history write.
var PriceCheckDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "price_check_duration_seconds",
		Help:      "Duration of a tracked-route price check.",
		Buckets:   prometheus.DefBuckets,
	},
)

// NotificationsTotal counts outbound price alerts.
// Labels:
//   - channel: notifier name ("twilio", "sns", "log") or "broker"
//   - result: "sent" or "failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of price alert deliveries, by channel and result.",
	},
	[]string{"channel", "result"},
)

// ScheduledJobs is the number of routes with a live periodic check.
var ScheduledJobs = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduled_jobs",
		Help:      "Current number of scheduled route price checks.",
	},
)

// ── Outbound API metrics ──────────────────────────────────────────────────────

// DistanceRequestsTotal counts calls to the distance provider.
// Labels:
//   - provider: "google" or "static"
//   - result: "ok" or "error"
var DistanceRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "distance_requests_total",
		Help:      "Total number of distance lookups, by provider and result.",
	},
	[]string{"provider", "result"},
)
