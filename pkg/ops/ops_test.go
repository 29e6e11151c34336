package ops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/cuemby/corenode/pkg/hash"
	"github.com/cuemby/corenode/pkg/modules"
	"github.com/cuemby/corenode/pkg/particle"
	"github.com/cuemby/corenode/pkg/scripts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopPool struct{}

func (noopPool) Send(context.Context, particle.Contact, particle.Particle) error { return nil }

type noopFailureSource struct{ ch chan string }

func (s noopFailureSource) Failures() <-chan string { return s.ch }

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	repo := modules.New(t.TempDir(), t.TempDir(), nil)
	cfg := scripts.Config{
		PeerID:          "self",
		TimerResolution: 10 * time.Millisecond,
		ParticleTTL:     time.Minute,
		MaxFailures:     3,
	}
	api, storage := scripts.New(noopPool{}, noopFailureSource{ch: make(chan string)}, cfg, nil)
	storage.Start()
	t.Cleanup(storage.Stop)
	return New(repo, api, nil)
}

func TestDispatchAddModuleAndListModules(t *testing.T) {
	d := newTestDispatcher(t)

	moduleBytes := []byte{9, 8, 7}
	addArgs, err := json.Marshal(map[string]interface{}{
		"module": base64.StdEncoding.EncodeToString(moduleBytes),
		"config": modules.ModuleConfig{Name: "m1", Config: map[string]interface{}{}},
	})
	require.NoError(t, err)

	result, err := d.Dispatch("add_module", addArgs)
	require.NoError(t, err)

	var hexHash string
	require.NoError(t, json.Unmarshal(result, &hexHash))
	assert.Equal(t, hash.Sum(moduleBytes).Hex(), hexHash)

	listResult, err := d.Dispatch("list_modules", nil)
	require.NoError(t, err)
	var entries []modules.ModuleListEntry
	require.NoError(t, json.Unmarshal(listResult, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "m1", entries[0].Name)
}

func TestDispatchUnknownOperation(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.Dispatch("does_not_exist", nil)
	assert.Error(t, err)
}

func TestDispatchAddAndRemoveScript(t *testing.T) {
	d := newTestDispatcher(t)

	addArgs, err := json.Marshal(map[string]interface{}{"src": "(script)"})
	require.NoError(t, err)
	result, err := d.Dispatch("add_script", addArgs)
	require.NoError(t, err)

	var uuid string
	require.NoError(t, json.Unmarshal(result, &uuid))
	assert.NotEmpty(t, uuid)

	removeArgs, err := json.Marshal(map[string]string{"uuid": uuid})
	require.NoError(t, err)
	removeResult, err := d.Dispatch("remove_script", removeArgs)
	require.NoError(t, err)

	var existed bool
	require.NoError(t, json.Unmarshal(removeResult, &existed))
}

func TestDispatchAddBlueprintThenResolve(t *testing.T) {
	d := newTestDispatcher(t)

	moduleBytes := []byte{1, 2, 3}
	h := hash.Sum(moduleBytes)
	addArgs, err := json.Marshal(map[string]interface{}{
		"module": base64.StdEncoding.EncodeToString(moduleBytes),
		"config": modules.ModuleConfig{Name: "dep", Config: map[string]interface{}{}},
	})
	require.NoError(t, err)
	_, err = d.Dispatch("add_module", addArgs)
	require.NoError(t, err)

	bpArgs, err := json.Marshal(modules.AddBlueprintRequest{
		Name:         "bp1",
		Dependencies: []modules.Dependency{modules.DependencyHash(h)},
	})
	require.NoError(t, err)
	bpResult, err := d.Dispatch("add_blueprint", bpArgs)
	require.NoError(t, err)

	var id string
	require.NoError(t, json.Unmarshal(bpResult, &id))

	resolveArgs, err := json.Marshal(map[string]string{"id": id})
	require.NoError(t, err)
	resolveResult, err := d.Dispatch("resolve_blueprint", resolveArgs)
	require.NoError(t, err)

	var descriptors []modules.ModuleDescriptor
	require.NoError(t, json.Unmarshal(resolveResult, &descriptors))
	require.Len(t, descriptors, 1)
	assert.Equal(t, "dep", descriptors[0].Name)
}
