/*
Package metrics provides Prometheus metrics collection and exposition for corenode.

The metrics package defines and registers all corenode metrics using the
Prometheus client library, giving observability into the module repository's
size, script scheduler load, and operation latency. Metrics are exposed via
an HTTP endpoint for scraping by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Categories               │          │
	│  │                                              │          │
	│  │  Modules: repository size, operation counts │          │
	│  │  Scripts: scheduled count, firings, drops   │          │
	│  │  Particles: in-flight sends, send latency   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

A Collector polls pkg/modules.Repository and pkg/scripts.Storage on a 15s
ticker and publishes their sizes as gauges; operation counters and
histograms are updated inline by the callers that perform those operations.

# Metrics Catalog

corenode_modules_total:
  - Type: Gauge
  - Description: Total number of modules in the repository

corenode_blueprints_total:
  - Type: Gauge
  - Description: Total number of blueprints in the repository

corenode_scripts_total:
  - Type: Gauge
  - Description: Total number of scripts currently scheduled

corenode_sent_particles_total:
  - Type: Gauge
  - Description: In-flight particle records awaiting a failure notification or cleanup

corenode_module_operations_total{operation, outcome}:
  - Type: Counter
  - Description: Module repository operations by operation (add_module,
    add_blueprint, resolve_blueprint, ...) and outcome (ok, error)

corenode_module_operation_duration_seconds{operation}:
  - Type: Histogram
  - Description: Module repository operation duration in seconds

corenode_scripts_fired_total:
  - Type: Counter
  - Description: Particles produced by the script scheduler

corenode_scripts_dropped_total:
  - Type: Counter
  - Description: Scripts evicted after exceeding the failure budget

corenode_particle_send_duration_seconds:
  - Type: Histogram
  - Description: Time taken to hand a particle to the connection pool

# Usage

	import "github.com/cuemby/corenode/pkg/metrics"

	timer := metrics.NewTimer()
	hash, err := repository.AddModule(moduleB64, cfg)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ModuleOperationsTotal.WithLabelValues("add_module", outcome).Inc()
	timer.ObserveDurationVec(metrics.ModuleOperationDuration, "add_module")

	// Expose metrics endpoint
	http.Handle("/metrics", metrics.Handler())

# Health and Readiness

RegisterComponent/UpdateComponent track the health of named components.
RegisterCritical marks a component name as required for readiness; /ready
reports not_ready until every critical name is both registered and healthy.
corenoded's serve command calls RegisterCritical for "modules" and "scripts"
once it stands up the repository scan and the script scheduler.

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
