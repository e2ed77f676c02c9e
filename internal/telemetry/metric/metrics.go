// Package metric provides Prometheus metrics for relaychat.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace prefixes every relaychat metric.
const namespace = "relaychat"

// Metrics is the instrument set for the relay.
//
// All instruments are updated from the coordinator goroutine or the
// accept loop; the prometheus types carry their own synchronization.
type Metrics struct {
	// ConnectionsTotal counts admitted connections (sessions created).
	ConnectionsTotal prometheus.Counter

	// ThrottledTotal counts connections dropped by the accept-path
	// per-origin throttle.
	ThrottledTotal prometheus.Counter

	// BannedRejectsTotal counts connection attempts rejected because
	// the origin was inside its ban window.
	BannedRejectsTotal prometheus.Counter

	// ActiveSessions tracks the current session table size.
	ActiveSessions prometheus.Gauge

	// BroadcastsTotal counts messages accepted and fanned out.
	BroadcastsTotal prometheus.Counter

	// StrikesTotal counts abuse signals (rate violations and
	// undecodable payloads).
	StrikesTotal prometheus.Counter

	// BansTotal counts ban records created.
	BansTotal prometheus.Counter

	// AuthFailuresTotal counts rejected token submissions.
	AuthFailuresTotal prometheus.Counter

	// QueueDepth tracks the event queue backlog as observed by the
	// coordinator.
	QueueDepth prometheus.Gauge
}

// New creates the instrument set and registers it with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Admitted connections since start.",
		}),
		ThrottledTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttled_connections_total",
			Help:      "Connections dropped by the accept-path throttle.",
		}),
		BannedRejectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "banned_rejects_total",
			Help:      "Connection attempts rejected due to an active ban.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Current number of live sessions.",
		}),
		BroadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Messages accepted and relayed to peers.",
		}),
		StrikesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strikes_total",
			Help:      "Abuse signals recorded across all sessions.",
		}),
		BansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bans_total",
			Help:      "Ban records created.",
		}),
		AuthFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected access token submissions.",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_queue_depth",
			Help:      "Events waiting for the coordinator.",
		}),
	}
}

// NewUnregistered creates an instrument set on a private registry.
// Convenient for tests that do not inspect metrics.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
