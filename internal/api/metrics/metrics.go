// Package metrics defines all custom Prometheus metrics for the storefront
// session gateway. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at import time
// via promauto; the /metrics endpoint is wired by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartMutationsTotal counts add/remove operations.
// Labels:
//   - op: "add" or "remove"
//   - mode: the cart phase the operation ran in ("guest" or "authenticated")
//   - result: "ok", "reverted" (remote failure undid the optimistic change),
//     or "noop" (remove on an absent product)
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by operation, mode, and result.",
	},
	[]string{"op", "mode", "result"},
)

// MergeItemsTotal counts per-item outcomes of the guest→authenticated merge.
// Label:
//   - result: "merged", "skipped" (product gone from catalog), or "failed"
//     (remote add error)
var MergeItemsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_merge_items_total",
		Help:      "Total number of guest-cart entries handled by the login merge, by outcome.",
	},
	[]string{"result"},
)

// MergeDuration measures one full merge: read guest cart, submit items, clear,
// refetch remote cart.
var MergeDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cart_merge_duration_seconds",
		Help:      "Duration of the guest-to-authenticated cart merge.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDenialsTotal counts requests rejected by route guards.
// Label:
//   - reason: "no_session", "unauthenticated", "role_mismatch", or
//     "permission_missing"
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests denied by access-control guards, by reason.",
	},
	[]string{"reason"},
)

// ── Interaction metrics ───────────────────────────────────────────────────────

// InteractionsDroppedTotal counts analytics events discarded because the
// dispatcher queue was full. Dropping is preferred over blocking a cart
// operation on the analytics sink.
var InteractionsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interactions_dropped_total",
		Help:      "Total number of interaction events dropped due to a full dispatch queue.",
	},
)

// InteractionsQueueDepth tracks pending events per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var InteractionsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "interactions_queue_depth",
		Help:      "Current number of interaction events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// ActiveSessions tracks the number of live in-memory sessions.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Current number of sessions resident in memory.",
	},
)
