// Package metrics defines and registers all custom Prometheus metrics for the
// storefront gateway. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Route guard metrics ───────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard verdicts.
// Label:
//   - decision: "allowed", "redirect_login" (absent/invalid session), or
//     "access_denied" (valid session, wrong role)
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by verdict.",
	},
	[]string{"decision"},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// RealtimeEventsTotal counts realtime events crossing the upstream connection.
// Labels:
//   - event: wire event name (e.g. "message:new", "chat:join")
//   - direction: "in" (server→client) or "out" (client→server)
var RealtimeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Total number of realtime events sent and received.",
	},
	[]string{"event", "direction"},
)

// RealtimeDroppedTotal counts inbound realtime events discarded before
// dispatch.
// Label:
//   - reason: "malformed", "unknown_event", or "duplicate"
var RealtimeDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_dropped_total",
		Help:      "Total number of inbound realtime events discarded, by reason.",
	},
	[]string{"reason"},
)

// RealtimeReconnectsTotal counts upstream reconnection attempts.
var RealtimeReconnectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_reconnects_total",
		Help:      "Total number of upstream realtime reconnection attempts.",
	},
)

// ── Chat cache metrics ────────────────────────────────────────────────────────

// ChatCacheTotal counts inbox read-model lookups.
// Label:
//   - result: "hit" or "miss"
var ChatCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_cache_total",
		Help:      "Total number of chat summary cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of access events waiting in each worker
// channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of access events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditErrorsTotal counts access events that failed to persist.
var AuditErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of access events that failed to persist.",
	},
)

// ── Backend API metrics ───────────────────────────────────────────────────────

// BackendRequestDuration measures round-trip time of proxied backend calls.
// Labels:
//   - endpoint: logical backend operation (e.g. "login", "list_chats")
//   - status: HTTP status class ("2xx", "4xx", "5xx", "error")
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API calls made on behalf of sessions.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint", "status"},
)
