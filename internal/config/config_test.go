package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.Comtrade.RatePerHour)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, filepath.Join("lib", "world_mining_data.db"), cfg.Data.MiningDB)
	assert.Equal(t, filepath.Join("output", "Datarecords.db"), cfg.Output.RecordsDB)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
logging:
  level: debug
data:
  dir: /data/reference
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join("/data/reference", "world_mining_data.db"), cfg.Data.MiningDB)
}

func TestLoadEnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("GPR_SERVER_PORT", "7070")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }},
		{name: "missing database", mutate: func(c *Config) { c.Data.TradeDB = "" }},
		{name: "bad rate", mutate: func(c *Config) { c.Comtrade.RatePerHour = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolvePathsKeepsAbsolute(t *testing.T) {
	cfg := Default()
	cfg.Data.MiningDB = "/abs/mining.db"
	cfg.resolvePaths()
	assert.Equal(t, "/abs/mining.db", cfg.Data.MiningDB)
}
