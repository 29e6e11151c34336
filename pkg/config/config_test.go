package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corenoded.yaml")
	require.NoError(t, os.WriteFile(path, []byte("peer_id: from-file\nmax_failures: 7\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.PeerID)
	assert.Equal(t, uint8(7), cfg.MaxFailures)
	assert.Equal(t, Default().ModulesDir, cfg.ModulesDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corenoded.yaml")
	require.NoError(t, os.WriteFile(path, []byte("peer_id: from-file\n"), 0o644))
	t.Setenv("CORENODE_PEER_ID", "from-env")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.PeerID)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CORENODE_PEER_ID", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("peer_id", Default().PeerID, "")
	require.NoError(t, flags.Set("peer_id", "from-flag"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.PeerID)
}

func TestLoadUnknownConfigFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/corenoded.yaml", nil)
	assert.Error(t, err)
}

func TestDefaultDurations(t *testing.T) {
	cfg := Default()
	assert.Equal(t, time.Second, cfg.TimerResolution)
	assert.Equal(t, 30*time.Second, cfg.ParticleTTL)
}
