package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: support-bot\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, SourceBuiltin, cfg.Catalog.Source)
	assert.Equal(t, 0.3, cfg.Engine.Threshold)
	assert.Equal(t, 3, cfg.Engine.HistorySize)
	assert.True(t, cfg.Engine.EntitiesEnabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)
	assert.Equal(t, 30*time.Minute, cfg.Engine.IdleTTL())
}

func TestLoadFromFile_Values(t *testing.T) {
	path := writeConfig(t, `
catalog:
  source: file
  path: ./intents.yaml
engine:
  threshold: 0.45
  history_size: 5
  seed: 42
logging:
  level: debug
  format: json
workers:
  dialogue-get-response:
    enabled: true
    max_jobs_active: 4
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, SourceFile, cfg.Catalog.Source)
	assert.Equal(t, "./intents.yaml", cfg.Catalog.Path)
	assert.Equal(t, 0.45, cfg.Engine.Threshold)
	assert.Equal(t, 5, cfg.Engine.HistorySize)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
	assert.Equal(t, "json", cfg.Logging.Format)

	worker := GetWorkerConfig(cfg, "dialogue-get-response")
	assert.Equal(t, 4, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "dialogue-reset-context"))
}

func TestLoadFromFile_ZeroHistoryKept(t *testing.T) {
	path := writeConfig(t, "engine:\n  history_size: 0\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Engine.HistorySize)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("SUPPORTBOT_ENGINE_THRESHOLD", "0.5")
	t.Setenv("SUPPORTBOT_LOGGING_LEVEL", "warn")
	path := writeConfig(t, "engine:\n  threshold: 0.2\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Engine.Threshold)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("CATALOG_FILE", "/srv/intents.json")
	path := writeConfig(t, "catalog:\n  source: file\n  path: ${CATALOG_FILE}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/intents.json", cfg.Catalog.Path)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"file source without path", "catalog:\n  source: file\n"},
		{"redis source without address", "catalog:\n  source: redis\n"},
		{"postgres source without host", "catalog:\n  source: postgres\n"},
		{"unknown source", "catalog:\n  source: s3\n"},
		{"unknown format", "catalog:\n  format: toml\n"},
		{"threshold out of range", "engine:\n  threshold: 1.5\n"},
		{"negative history", "engine:\n  history_size: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "bot", Password: "pw", Database: "support", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=bot password=pw dbname=support sslmode=disable", p.GetDSN())
}
