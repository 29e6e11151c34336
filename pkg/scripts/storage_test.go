package scripts

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cuemby/corenode/pkg/particle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPool struct {
	mu       sync.Mutex
	particles []particle.Particle
}

func (m *mockPool) Send(_ context.Context, _ particle.Contact, p particle.Particle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.particles = append(m.particles, p)
	return nil
}

func (m *mockPool) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.particles)
}

func (m *mockPool) all() []particle.Particle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]particle.Particle, len(m.particles))
	copy(out, m.particles)
	return out
}

type mockFailureSource struct {
	ch chan string
}

func newMockFailureSource() *mockFailureSource {
	return &mockFailureSource{ch: make(chan string, 16)}
}

func (m *mockFailureSource) Failures() <-chan string {
	return m.ch
}

func newTestStorage(t *testing.T, resolution time.Duration) (*API, *Storage, *mockPool, *mockFailureSource) {
	t.Helper()
	pool := &mockPool{}
	failures := newMockFailureSource()
	cfg := Config{
		PeerID:          "self",
		TimerResolution: resolution,
		ParticleTTL:     time.Minute,
		MaxFailures:     3,
	}
	api, storage := New(pool, failures, cfg, nil)
	storage.Start()
	t.Cleanup(storage.Stop)
	return api, storage, pool, failures
}

func TestRecurringScriptFiresRepeatedly(t *testing.T) {
	_, storage, pool, _ := newTestStorage(t, 10*time.Millisecond)

	interval := 40 * time.Millisecond
	storage.commands <- addScriptCommand{uuid: "recurring-1", src: "(script)", interval: &interval}

	require.Eventually(t, func() bool { return pool.count() >= 2 }, time.Second, 10*time.Millisecond)

	for _, p := range pool.all() {
		assert.Equal(t, "self", p.InitPeerID)
		assert.Equal(t, uint32(60), p.TTL)
		assert.True(t, strings.HasPrefix(p.ID, "auto_"))
	}
}

func TestOneShotScriptFiresOnceAndIsRemoved(t *testing.T) {
	_, storage, pool, _ := newTestStorage(t, 10*time.Millisecond)

	storage.commands <- addScriptCommand{uuid: "one-shot-1", src: "(script)", interval: nil}

	require.Eventually(t, func() bool { return pool.count() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, pool.count())
	assert.Equal(t, 0, storage.ScriptCount())
}

func TestScriptDroppedAfterMaxFailures(t *testing.T) {
	_, storage, pool, failures := newTestStorage(t, 10*time.Millisecond)

	interval := 20 * time.Millisecond
	storage.commands <- addScriptCommand{uuid: "flaky", src: "(script)", interval: &interval}

	require.Eventually(t, func() bool { return pool.count() >= 1 }, time.Second, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		require.Eventually(t, func() bool { return pool.count() >= i+1 }, time.Second, 10*time.Millisecond)
		p := pool.all()[i]
		failures.ch <- p.ID
	}

	require.Eventually(t, func() bool { return storage.ScriptCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestAddAndRemoveScriptViaAPI(t *testing.T) {
	api, storage, _, _ := newTestStorage(t, 10*time.Millisecond)

	// A recurring script stays stored after it fires, so it still exists when
	// the remove command arrives.
	interval := time.Hour
	id, err := api.AddScript("(script)", &interval)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return storage.ScriptCount() >= 1 }, 200*time.Millisecond, 5*time.Millisecond)

	reply, err := api.RemoveScript(id)
	require.NoError(t, err)
	select {
	case existed := <-reply:
		assert.True(t, existed)
	case <-time.After(time.Second):
		t.Fatal("remove script reply timed out")
	}
}

func TestAddScriptAfterStopReturnsErrOutlet(t *testing.T) {
	api, storage, _, _ := newTestStorage(t, 10*time.Millisecond)
	storage.Stop()

	_, err := api.AddScript("(script)", nil)
	assert.ErrorIs(t, err, ErrOutlet)
}

func TestRemoveUnknownScriptReturnsFalse(t *testing.T) {
	api, _, _, _ := newTestStorage(t, 50*time.Millisecond)

	reply, err := api.RemoveScript("does-not-exist")
	require.NoError(t, err)
	select {
	case existed := <-reply:
		assert.False(t, existed)
	case <-time.After(time.Second):
		t.Fatal("remove script reply timed out")
	}
}
