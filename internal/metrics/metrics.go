// Package metrics exposes the Prometheus collectors tracking
// connection state, slot activity, and dispatcher load.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the collectors registered for one eguisyncd process.
// It is safe for concurrent use by the server's reader/writer tasks
// and the registry slots.
type Metrics struct {
	ConnectionState  prometheus.Gauge
	EnabledSlots     *prometheus.GaugeVec
	FramesSent       *prometheus.CounterVec
	PendingWrites    prometheus.Gauge
	DispatcherQueued prometheus.Gauge
}

// New constructs a Metrics bundle and registers its collectors against
// reg. Callers normally pass prometheus.NewRegistry() or
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eguisync",
			Subsystem: "server",
			Name:      "connection_state",
			Help:      "Current connection state: 0=idle, 1=handshaking, 2=running, 3=draining.",
		}),
		EnabledSlots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "eguisync",
			Subsystem: "registry",
			Name:      "enabled_slots",
			Help:      "Number of slots currently enabled for the active connection, by kind.",
		}, []string{"kind"}),
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eguisync",
			Subsystem: "server",
			Name:      "frames_sent_total",
			Help:      "Server-to-client wire records sent, by tag.",
		}, []string{"tag"}),
		PendingWrites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eguisync",
			Subsystem: "registry",
			Name:      "pending_writes",
			Help:      "Sum of pending_writes counters across all Value slots.",
		}),
		DispatcherQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eguisync",
			Subsystem: "dispatch",
			Name:      "queued_signals",
			Help:      "Number of ids currently holding an undelivered signal value.",
		}),
	}

	reg.MustRegister(
		m.ConnectionState,
		m.EnabledSlots,
		m.FramesSent,
		m.PendingWrites,
		m.DispatcherQueued,
	)

	return m
}

// Connection state values recorded on ConnectionState.
const (
	StateIdle = iota
	StateHandshaking
	StateRunning
	StateDraining
)

// SetConnectionState records the current lifecycle state (spec §4.E).
func (m *Metrics) SetConnectionState(state int) {
	m.ConnectionState.Set(float64(state))
}

// ObserveFrameSent increments the per-tag frame counter. tag is a
// stable per-record-kind label; the server passes its tagName strings
// ("value", "image", "update", ...).
func (m *Metrics) ObserveFrameSent(tag string) {
	m.FramesSent.WithLabelValues(tag).Inc()
}

// SetEnabledSlots records the number of enabled slots of a given kind
// ("value", "static", "signal", "list", "map", "image", "graph").
func (m *Metrics) SetEnabledSlots(kind string, count int) {
	m.EnabledSlots.WithLabelValues(kind).Set(float64(count))
}

// AddPendingWrites adjusts the running sum of pending_writes counters
// across every Value slot by delta (positive on a new outstanding
// write, negative on an Acknowledge). Called directly from
// internal/registry.Value as its counter changes.
func (m *Metrics) AddPendingWrites(delta int) {
	m.PendingWrites.Add(float64(delta))
}

// SetDispatcherQueued records the number of ids currently holding an
// undelivered signal value. Called directly from internal/dispatch.Dispatcher
// as its queue changes.
func (m *Metrics) SetDispatcherQueued(n int) {
	m.DispatcherQueued.Set(float64(n))
}
