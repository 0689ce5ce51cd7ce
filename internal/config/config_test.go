package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  host: \"127.0.0.1\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "USD", cfg.Engine.DefaultCurrency)
	assert.Equal(t, 1000, cfg.Audit.MaxEntries)
	assert.True(t, cfg.Monitor.Enabled)
	assert.Equal(t, "@hourly", cfg.Monitor.SweepSchedule)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9000
engine:
  default_currency: "EUR"
monitor:
  enabled: false
logging:
  development: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "EUR", cfg.Engine.DefaultCurrency)
	assert.False(t, cfg.Monitor.Enabled)
	assert.True(t, cfg.Logging.Development)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{HTTPPort: 8080},
		Engine:  EngineConfig{DefaultCurrency: "USD"},
		Audit:   AuditConfig{MaxEntries: 100},
		Monitor: MonitorConfig{Enabled: true, SweepSchedule: "@hourly"},
	}
	assert.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Server.HTTPPort = -1
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Engine.DefaultCurrency = ""
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Monitor.SweepSchedule = ""
	assert.Error(t, bad.Validate())
}
