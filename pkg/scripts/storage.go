package scripts

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/corenode/pkg/events"
	"github.com/cuemby/corenode/pkg/log"
	"github.com/cuemby/corenode/pkg/metrics"
	"github.com/cuemby/corenode/pkg/particle"
	"github.com/google/uuid"
)

// Storage is the script storage and scheduler actor: a single goroutine
// owning the script and sent-particle maps, selecting over commands,
// failure notifications, and a firing timer.
type Storage struct {
	api      *API
	commands chan command
	failures <-chan string
	pool     particle.ConnectionPool
	config   Config
	broker   *events.Broker

	scriptsMu sync.Mutex
	scripts   map[ScriptID]*Script

	sentMu        sync.Mutex
	sentParticles map[string]SentParticle

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds the actor and its public API but does not start the event
// loop; call Start to begin processing.
func New(pool particle.ConnectionPool, source particle.FailureSource, config Config, broker *events.Broker) (*API, *Storage) {
	commands := make(chan command, 256)
	api := newAPI(commands)
	s := &Storage{
		api:           api,
		commands:      commands,
		failures:      source.Failures(),
		pool:          pool,
		config:        config,
		broker:        broker,
		scripts:       make(map[ScriptID]*Script),
		sentParticles: make(map[string]SentParticle),
		stopCh:        make(chan struct{}),
	}
	return api, s
}

// Start begins the actor's event loop in a new goroutine.
func (s *Storage) Start() {
	go s.run()
}

// Stop closes the API before terminating the event loop, so any AddScript
// or RemoveScript call racing with shutdown gets ErrOutlet back immediately
// instead of blocking on a command nothing will ever service. Safe to call
// more than once.
func (s *Storage) Stop() {
	s.stopOnce.Do(func() {
		s.api.close()
		close(s.stopCh)
	})
}

func (s *Storage) run() {
	ticker := time.NewTicker(s.config.TimerResolution)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-s.commands:
			s.executeCommand(cmd)
		case particleID := <-s.failures:
			s.removeFailedScript(particleID)
		case <-ticker.C:
			s.executeScripts()
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Storage) publish(t events.EventType, message string) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(&events.Event{Type: t, Message: message})
}

func (s *Storage) executeCommand(cmd command) {
	switch c := cmd.(type) {
	case addScriptCommand:
		s.scriptsMu.Lock()
		s.scripts[ScriptID(c.uuid)] = &Script{Src: c.src, Interval: c.interval}
		s.scriptsMu.Unlock()
		s.publish(events.EventScriptAdded, c.uuid)
	case removeScriptCommand:
		s.scriptsMu.Lock()
		_, existed := s.scripts[ScriptID(c.uuid)]
		delete(s.scripts, ScriptID(c.uuid))
		s.scriptsMu.Unlock()

		c.reply <- existed
		close(c.reply)
		if existed {
			s.publish(events.EventScriptRemoved, c.uuid)
		}
	}
}

type firingEntry struct {
	id     ScriptID
	script Script
}

// executeScripts is the per-tick firing algorithm: drain one-shots in one
// critical section, select due recurring scripts in a second, then fire
// each outside any lock.
func (s *Storage) executeScripts() {
	now := time.Now()

	var toFire []firingEntry

	s.scriptsMu.Lock()
	for id, script := range s.scripts {
		if script.Interval == nil {
			toFire = append(toFire, firingEntry{id, *script})
			delete(s.scripts, id)
		}
	}
	s.scriptsMu.Unlock()

	s.scriptsMu.Lock()
	for id, script := range s.scripts {
		deadline, has := script.Deadline()
		if !has || !deadline.After(now) {
			script.ExecutedAt = &now
			toFire = append(toFire, firingEntry{id, *script})
		}
	}
	s.scriptsMu.Unlock()

	for _, f := range toFire {
		s.fireOne(f, now)
	}
}

func (s *Storage) fireOne(f firingEntry, now time.Time) {
	particleID := "auto_" + uuid.New().String()

	s.sentMu.Lock()
	s.sentParticles[particleID] = SentParticle{
		ScriptID: f.id,
		Deadline: now.Add(s.config.ParticleTTL),
	}
	s.sentMu.Unlock()

	p := particle.Particle{
		ID:         particleID,
		InitPeerID: s.config.PeerID,
		Timestamp:  now,
		TTL:        uint32(s.config.ParticleTTL.Seconds()),
		Script:     f.script.Src,
	}
	contact := particle.Contact{PeerID: s.config.PeerID}

	timer := metrics.NewTimer()
	err := s.pool.Send(context.Background(), contact, p)
	timer.ObserveDuration(metrics.ParticleSendDuration)
	if err != nil {
		log.WithComponent("scripts").Warn().Err(err).
			Str("particle_id", particleID).
			Msg("connection pool failed to send particle")
	}
	metrics.ScriptsFiredTotal.Inc()
	s.publish(events.EventScriptFired, particleID)
}

// cleanup retains sent_particles whose deadline has already passed and
// drops those still pending. This is the documented defect of the original
// source (see DESIGN.md Open Question 1): the sensible policy would be the
// reverse, but it is reproduced faithfully rather than corrected.
func (s *Storage) cleanup() {
	now := time.Now()
	s.sentMu.Lock()
	defer s.sentMu.Unlock()
	for id, sp := range s.sentParticles {
		if !sp.Deadline.Before(now) {
			delete(s.sentParticles, id)
		}
	}
}

func (s *Storage) removeFailedScript(particleID string) {
	s.sentMu.Lock()
	sp, ok := s.sentParticles[particleID]
	if ok {
		delete(s.sentParticles, particleID)
	}
	s.sentMu.Unlock()
	if !ok {
		return
	}

	dropped := false
	s.scriptsMu.Lock()
	if script, ok := s.scripts[sp.ScriptID]; ok {
		if script.Failures+1 >= s.config.MaxFailures {
			delete(s.scripts, sp.ScriptID)
			dropped = true
		} else {
			script.Failures++
		}
	}
	s.scriptsMu.Unlock()

	if dropped {
		metrics.ScriptsDroppedTotal.Inc()
		s.publish(events.EventScriptDropped, string(sp.ScriptID))
	}
}

// ScriptCount returns the number of scripts currently stored, for metrics.
func (s *Storage) ScriptCount() int {
	s.scriptsMu.Lock()
	defer s.scriptsMu.Unlock()
	return len(s.scripts)
}

// SentParticleCount returns the number of in-flight particle records, for
// metrics.
func (s *Storage) SentParticleCount() int {
	s.sentMu.Lock()
	defer s.sentMu.Unlock()
	return len(s.sentParticles)
}
