package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "devfolio", cfg.App.Name)
	assert.Equal(t, 8029, cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "http", cfg.Auth.Provider)
	assert.Equal(t, "/sign-in", cfg.Auth.SignInPath)
	assert.Equal(t, "project.created", cfg.RabbitMQ.RoutingKey.ProjectCreated)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Telemetry.EnableTLS)
	assert.Equal(t, 10, cfg.Telemetry.ExportIntervalSec)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte(`
app:
  name: portfolio
database:
  driver: sqlite
  dsn: file::memory:
auth:
  signinpath: /login
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("DEVFOLIO_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "portfolio", cfg.App.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, "/login", cfg.Auth.SignInPath)
	assert.Equal(t, "debug", cfg.Log.Level)
}
