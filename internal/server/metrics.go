package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks kvflowd-specific Prometheus metrics, exposed by the
// admin HTTP mux alongside /healthz. All metrics use the kvflowd_
// prefix to distinguish them if scraped alongside other exporters.
type Metrics struct {
	ConnectionsTotal   prometheus.Counter
	ConnectionsActive  prometheus.Gauge
	CommandsTotal      *prometheus.CounterVec
	StoreSize          prometheus.GaugeFunc
	SnapshotLoadErrors prometheus.Counter
	SnapshotKeysLoaded prometheus.Counter
}

// NewMetrics creates and registers kvflowd's metrics. storeSize is
// polled lazily whenever the gauge is scraped.
func NewMetrics(reg prometheus.Registerer, storeSize func() float64) *Metrics {
	m := &Metrics{
		ConnectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kvflowd_connections_total",
				Help: "Total accepted client connections",
			},
		),
		ConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "kvflowd_connections_active",
				Help: "Currently open client connections",
			},
		),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvflowd_commands_total",
				Help: "Total dispatched commands by outcome",
			},
			[]string{"outcome"}, // "ok", "unknown_command", "invalid_arguments"
		),
		StoreSize: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "kvflowd_store_keys",
				Help: "Current number of keys across all store shards",
			},
			storeSize,
		),
		SnapshotLoadErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kvflowd_snapshot_load_errors_total",
				Help: "Snapshot load failures encountered at startup",
			},
		),
		SnapshotKeysLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kvflowd_snapshot_keys_loaded_total",
				Help: "Keys seeded into the store from the startup snapshot",
			},
		),
	}

	reg.MustRegister(
		m.ConnectionsTotal,
		m.ConnectionsActive,
		m.CommandsTotal,
		m.StoreSize,
		m.SnapshotLoadErrors,
		m.SnapshotKeysLoaded,
	)
	return m
}
