package metrics

import "time"

// repositorySource is the subset of pkg/modules.Repository this collector
// needs, kept as an interface so pkg/metrics doesn't import pkg/modules
// directly (cmd/corenoded wires the concrete types together).
type repositorySource interface {
	ModuleCount() int
	BlueprintCount() int
}

// storageSource is the subset of pkg/scripts.Storage this collector needs.
type storageSource interface {
	ScriptCount() int
	SentParticleCount() int
}

// Collector polls the module repository and script storage on a ticker and
// publishes their sizes as gauges.
type Collector struct {
	repository repositorySource
	storage    storageSource
	stopCh     chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(repository repositorySource, storage storageSource) *Collector {
	return &Collector{
		repository: repository,
		storage:    storage,
		stopCh:     make(chan struct{}),
	}
}

// Start begins collecting metrics on a 15 second tick.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if c.repository != nil {
		ModulesTotal.Set(float64(c.repository.ModuleCount()))
		BlueprintsTotal.Set(float64(c.repository.BlueprintCount()))
	}
	if c.storage != nil {
		ScriptsTotal.Set(float64(c.storage.ScriptCount()))
		SentParticlesTotal.Set(float64(c.storage.SentParticleCount()))
	}
}
