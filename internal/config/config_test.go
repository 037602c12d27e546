package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jobsh/internal/config"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JOBSH_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 100, cfg.Jobs.Capacity)
	require.Equal(t, "shell> ", cfg.Shell.Prompt)
	require.True(t, cfg.Shell.Banner)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Empty(t, cfg.Log.File)
}

func TestLoadFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "jobsh.toml")
	data := []byte(`
[jobs]
capacity = 5

[shell]
banner = false

[log]
level = "debug"
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("JOBSH_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Jobs.Capacity)
	require.False(t, cfg.Shell.Banner)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "shell> ", cfg.Shell.Prompt)
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("JOBSH_JOBS_CAPACITY", "7")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Jobs.Capacity)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	t.Setenv("JOBSH_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	_, err := config.Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Config{
		Jobs: config.JobsConfig{Capacity: 0},
		Log:  config.LogConfig{Level: "warn"},
	}
	require.Error(t, cfg.Validate())

	cfg.Jobs.Capacity = 1
	require.NoError(t, cfg.Validate())

	cfg.Log.Level = "loud"
	require.Error(t, cfg.Validate())
}
