package modules

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/corenode/pkg/hash"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	modulesDir := t.TempDir()
	blueprintsDir := t.TempDir()
	return New(modulesDir, blueprintsDir, nil)
}

func TestAddModuleWritesContentAddressedFiles(t *testing.T) {
	repo := newTestRepo(t)

	bytes := []byte{1, 2, 3}
	b64 := base64.StdEncoding.EncodeToString(bytes)

	hexHash, err := repo.AddModule(b64, ModuleConfig{Name: "m1", Config: map[string]interface{}{}})
	require.NoError(t, err)
	assert.Equal(t, hash.Sum(bytes).Hex(), hexHash)

	_, err = os.Stat(filepath.Join(repo.modulesDir, hexHash+wasmSuffix))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(repo.modulesDir, hexHash+configSuffix))
	assert.NoError(t, err)
}

func TestAddBlueprintSameDependenciesCollideById(t *testing.T) {
	repo := newTestRepo(t)

	h1 := hash.Sum([]byte{1, 2, 3})
	h2 := hash.Sum([]byte{3, 2, 1})
	deps := []Dependency{DependencyHash(h1), DependencyHash(h2)}

	id1, err := repo.AddBlueprint(AddBlueprintRequest{Name: "bp1", Dependencies: deps})
	require.NoError(t, err)

	bps := repo.GetBlueprints()
	require.Len(t, bps, 1)
	assert.Equal(t, "bp1", bps[0].Name)

	id2, err := repo.AddBlueprint(AddBlueprintRequest{Name: "bp2", Dependencies: deps})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	bps = repo.GetBlueprints()
	require.Len(t, bps, 1)
	assert.Equal(t, "bp2", bps[0].Name)
}

func TestAddBlueprintResolvesNameDependency(t *testing.T) {
	repo := newTestRepo(t)

	h1 := hash.Sum([]byte{1, 2, 3})
	h2 := hash.Sum([]byte{3, 2, 1})
	repo.modulesByName["m1"] = h1

	id, err := repo.AddBlueprint(AddBlueprintRequest{
		Name:         "bp",
		Dependencies: []Dependency{DependencyName("m1"), DependencyHash(h2)},
	})
	require.NoError(t, err)

	want, err := hashDependencies([]Dependency{DependencyHash(h1), DependencyHash(h2)})
	require.NoError(t, err)
	assert.Equal(t, want.Hex(), id)
}

func TestAddBlueprintFailsOnUnknownName(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.AddBlueprint(AddBlueprintRequest{
		Name:         "bp",
		Dependencies: []Dependency{DependencyName("unknown")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidModuleName)
}

func TestConstructionMigratesLegacyFilename(t *testing.T) {
	modulesDir := t.TempDir()
	blueprintsDir := t.TempDir()

	bytes := []byte("legacy module bytes")
	h := hash.Sum(bytes)

	require.NoError(t, os.WriteFile(filepath.Join(modulesDir, "legacy.wasm"), bytes, 0o644))
	cfg := ModuleConfig{Name: "legacy-name", Config: map[string]interface{}{}}
	data := marshalConfigForTest(t, cfg)
	require.NoError(t, os.WriteFile(filepath.Join(modulesDir, "legacy_config.toml"), data, 0o644))

	repo := New(modulesDir, blueprintsDir, nil)

	_, err := os.Stat(filepath.Join(modulesDir, h.Hex()+wasmSuffix))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(modulesDir, h.Hex()+configSuffix))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(modulesDir, "legacy.wasm"))
	assert.True(t, os.IsNotExist(err))

	got, ok := repo.modulesByName["legacy-name"]
	require.True(t, ok)
	assert.Equal(t, h, got)
}

func TestListModulesReportsMalformedEntries(t *testing.T) {
	modulesDir := t.TempDir()
	blueprintsDir := t.TempDir()

	// Written after construction: New would otherwise migrate the file to its
	// content-hash name before ListModules ever saw it.
	repo := New(modulesDir, blueprintsDir, nil)
	require.NoError(t, os.WriteFile(filepath.Join(modulesDir, "not-a-hash.wasm"), []byte{1}, 0o644))

	entries := repo.ListModules()
	require.Len(t, entries, 1)
	assert.Equal(t, "not-a-hash", entries[0].InvalidFileName)
	assert.NotEmpty(t, entries[0].Error)
}

func marshalConfigForTest(t *testing.T, cfg ModuleConfig) []byte {
	t.Helper()
	data, err := toml.Marshal(cfg)
	require.NoError(t, err)
	return data
}
