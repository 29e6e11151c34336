package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ModulesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corenode_modules_total",
			Help: "Total number of modules in the repository",
		},
	)

	BlueprintsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corenode_blueprints_total",
			Help: "Total number of blueprints in the repository",
		},
	)

	ScriptsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corenode_scripts_total",
			Help: "Total number of scripts currently scheduled",
		},
	)

	SentParticlesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corenode_sent_particles_total",
			Help: "Total number of in-flight particle records awaiting a failure notification or cleanup",
		},
	)

	ModuleOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corenode_module_operations_total",
			Help: "Total number of module repository operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ModuleOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corenode_module_operation_duration_seconds",
			Help:    "Module repository operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ScriptsFiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "corenode_scripts_fired_total",
			Help: "Total number of particles produced by the script scheduler",
		},
	)

	ScriptsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "corenode_scripts_dropped_total",
			Help: "Total number of scripts evicted after exceeding the failure budget",
		},
	)

	ParticleSendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "corenode_particle_send_duration_seconds",
			Help:    "Time taken to hand a particle to the connection pool",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(ModulesTotal)
	prometheus.MustRegister(BlueprintsTotal)
	prometheus.MustRegister(ScriptsTotal)
	prometheus.MustRegister(SentParticlesTotal)
	prometheus.MustRegister(ModuleOperationsTotal)
	prometheus.MustRegister(ModuleOperationDuration)
	prometheus.MustRegister(ScriptsFiredTotal)
	prometheus.MustRegister(ScriptsDroppedTotal)
	prometheus.MustRegister(ParticleSendDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
