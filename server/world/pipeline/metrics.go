package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tallworlds/cubicgen/server/entity"
)

// Metrics tracks the progress of cube generation as Prometheus collectors. A nil *Metrics is valid and
// records nothing. Metrics implements cubegen.Observer.
type Metrics struct {
	advances   *prometheus.CounterVec
	deferrals  *prometheus.CounterVec
	violations *prometheus.CounterVec
	panics     *prometheus.CounterVec
	spawned    *prometheus.CounterVec
	failed     *prometheus.CounterVec

	queue prometheus.Gauge
	cubes prometheus.Gauge
	tick  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. If reg is nil, the collectors are not
// registered anywhere.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		advances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cubegen",
			Name:      "stage_advances_total",
			Help:      "Cubes advanced, by the stage they advanced from.",
		}, []string{"stage"}),
		deferrals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cubegen",
			Name:      "stage_deferrals_total",
			Help:      "Stage attempts that found the cube or its neighbours not ready.",
		}, []string{"stage"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cubegen",
			Name:      "invariant_violations_total",
			Help:      "Stage requests for cubes that already completed the stage.",
		}, []string{"stage"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cubegen",
			Name:      "stage_panics_total",
			Help:      "Stage attempts aborted by a panic.",
		}, []string{"stage"}),
		spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cubegen",
			Name:      "agents_spawned_total",
			Help:      "Agents spawned during population.",
		}, []string{"type"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cubegen",
			Name:      "agent_construction_failures_total",
			Help:      "Agents that could not be constructed during population.",
		}, []string{"type"}),
		queue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cubegen",
			Name:      "queue_length",
			Help:      "Cubes queued for generation.",
		}),
		cubes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cubegen",
			Name:      "cubes_loaded",
			Help:      "Cubes held by the store.",
		}),
		tick: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cubegen",
			Name:      "tick_duration_seconds",
			Help:      "Duration of a single scheduler tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.advances, m.deferrals, m.violations, m.panics, m.spawned, m.failed, m.queue, m.cubes, m.tick)
	}
	return m
}

// Advanced records a cube advanced from the stage passed.
func (m *Metrics) Advanced(stage string) {
	if m == nil {
		return
	}
	m.advances.WithLabelValues(stage).Inc()
}

// Deferred records a stage attempt that was not ready.
func (m *Metrics) Deferred(stage string) {
	if m == nil {
		return
	}
	m.deferrals.WithLabelValues(stage).Inc()
}

// Panicked records a stage attempt aborted by a panic.
func (m *Metrics) Panicked(stage string) {
	if m == nil {
		return
	}
	m.panics.WithLabelValues(stage).Inc()
}

// InvariantViolated ...
func (m *Metrics) InvariantViolated(stage string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(stage).Inc()
}

// AgentSpawned ...
func (m *Metrics) AgentSpawned(t entity.Type) {
	if m == nil {
		return
	}
	m.spawned.WithLabelValues(string(t)).Inc()
}

// ConstructionFailed ...
func (m *Metrics) ConstructionFailed(t entity.Type) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(string(t)).Inc()
}

// SetQueueLength stores the current length of the scheduler queue.
func (m *Metrics) SetQueueLength(n int) {
	if m == nil {
		return
	}
	m.queue.Set(float64(n))
}

// SetCubes stores the current amount of cubes held by the store.
func (m *Metrics) SetCubes(n int) {
	if m == nil {
		return
	}
	m.cubes.Set(float64(n))
}

// ObserveTick records the duration of a tick in seconds.
func (m *Metrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.tick.Observe(seconds)
}
