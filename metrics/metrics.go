// Package metrics exposes prometheus counters and gauges for both
// binaries: ingest frame counts, validation error counts, fleet map
// size, per-session throttle/suppress counts, and egress per-socket
// send counts (the latter gives spec's statistical load-spread
// property a production-observable counterpart). Grounded on
// etalazz-vsa/internal/ratelimiter/telemetry/churn/prom_counters.go's
// package-level counter/gauge construction plus promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestFramesTotal counts every frame read on the ingest port,
	// valid or not.
	IngestFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buses",
		Subsystem: "ingest",
		Name:      "frames_total",
		Help:      "Total frames read on the ingest port.",
	})

	// ValidationErrorsTotal counts frames rejected by the wire
	// validation registry, labeled by which schema rejected them.
	ValidationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "buses",
		Subsystem: "wire",
		Name:      "validation_errors_total",
		Help:      "Total frames rejected by schema validation, by schema name.",
	}, []string{"schema"})

	// FleetSize is the current number of buses tracked in the fleet
	// map.
	FleetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "buses",
		Subsystem: "fleet",
		Name:      "size",
		Help:      "Current number of buses tracked in the fleet map.",
	})

	// SessionsActive is the current number of open browser sessions.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "buses",
		Subsystem: "session",
		Name:      "active",
		Help:      "Current number of open browser sessions.",
	})

	// SnapshotsSentTotal counts fleet snapshots actually written to a
	// browser session (i.e. not throttle-suppressed).
	SnapshotsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buses",
		Subsystem: "session",
		Name:      "snapshots_sent_total",
		Help:      "Total fleet snapshots sent to browser sessions.",
	})

	// SnapshotsSuppressedTotal counts fleet snapshots dropped by the
	// per-session throttle.
	SnapshotsSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buses",
		Subsystem: "session",
		Name:      "snapshots_suppressed_total",
		Help:      "Total fleet snapshots suppressed by the send throttle.",
	})

	// EgressSendsTotal counts messages sent per egress socket index,
	// the production-observable counterpart of the load-spread
	// property.
	EgressSendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "buses",
		Subsystem: "egress",
		Name:      "sends_total",
		Help:      "Total messages sent, by egress socket index.",
	}, []string{"socket"})

	// EgressReconnectsTotal counts egress pool reconnects.
	EgressReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buses",
		Subsystem: "egress",
		Name:      "reconnects_total",
		Help:      "Total times the egress pool was torn down and reopened.",
	})
)
