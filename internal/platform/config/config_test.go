package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
backend:
  base_url: https://api.example.com/api/v1
  timeout: 5s
session:
  secret: local-secret
cache:
  keep_unused_for: 2m
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "/integrations", cfg.Backend.IntegrationPrefix)
	assert.Equal(t, "local-secret", cfg.Session.Secret)
	assert.Equal(t, 2*time.Minute, cfg.Cache.KeepUnusedFor)
	assert.Equal(t, time.Minute, cfg.Cache.SweepInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5173, cfg.Server.Port)
	assert.Equal(t, 120, cfg.RateLimit.WritesPerMinute)
	assert.Equal(t, 30*24*time.Hour, cfg.Audit.Retention)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:5000/api/v1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, "console:invalidate", cfg.Broadcast.Channel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
