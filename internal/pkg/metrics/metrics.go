// Package metrics defines and registers all custom Prometheus metrics for the
// matchbot session service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matchbot"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts published session state transitions.
// Label:
//   - state: the state after the transition ("loading", "anonymous", "authenticated")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by resulting state.",
	},
	[]string{"state"},
)

// AuthOperationsTotal counts session operations by outcome.
// Labels:
//   - operation: "login", "register", "logout", "update_profile"
//   - result: "success", "failure", or "busy" (rejected while another call was in flight)
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of session operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// SessionStoreErrorsTotal counts failed session store calls.
// Label:
//   - op: "load", "save", or "clear"
var SessionStoreErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_store_errors_total",
		Help:      "Total number of session store failures, by store operation.",
	},
	[]string{"op"},
)

// ── Access gate metrics ───────────────────────────────────────────────────────

// GateDecisionsTotal counts access gate decisions served over HTTP.
// Label:
//   - decision: "wait", "render", "redirect_login", "redirect_default"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access gate decisions, by decision.",
	},
	[]string{"decision"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsQueueDepth tracks notifications waiting for delivery.
var NotificationsQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in the dispatcher channel.",
	},
)

// NotificationsDroppedTotal counts notifications discarded because the
// dispatcher buffer was full.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of notifications dropped on a full dispatcher buffer.",
	},
)
