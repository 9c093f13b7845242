package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFrom_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[general]
source = "postgres"

[policy]
action_cap = 4

[fields]
totalValue = ["ceiling", "total_value"]

[daemon]
interval_secs = 5
`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.General.Source)
	assert.Equal(t, 4, cfg.Policy.ActionCap)
	assert.Equal(t, 0.85, cfg.Policy.CompletionFactor, "untouched keys keep defaults")
	assert.Equal(t, []string{"ceiling", "total_value"}, cfg.Fields["totalValue"])
	assert.Equal(t, 5, cfg.Daemon.IntervalSecs)
	assert.Equal(t, "127.0.0.1:8797", cfg.Daemon.Addr)
}

func TestLoadFrom_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general\nsource="), 0o600))
	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://procure.example.com/api"
	cfg.General.Snapshots = []string{"/data/sows"}

	require.NoError(t, SaveTo(path, cfg))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Token = "from-file"
	cfg.Postgres.URL = "postgres://file"

	t.Setenv(EnvAPIToken, "from-env")
	t.Setenv(EnvDatabaseURL, "")

	assert.Equal(t, "from-env", APIToken(cfg))
	assert.Equal(t, "postgres://file", DatabaseURL(cfg))
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "portsignal", "config.toml"), ConfigPath())
}
