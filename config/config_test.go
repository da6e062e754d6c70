package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigyambat/BioStream/editor"
)

// clearEnv blanks every override so the host environment can't leak in.
func clearEnv(t *testing.T) {
	for _, k := range []string{EnvDatabaseURL, EnvDriver, EnvAddr, EnvLogLevel, EnvLogFormat, EnvAutoConnect, EnvHistoryLimit, EnvAutosave} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "biostream.db", cfg.Database.DSN)
	assert.Equal(t, editor.DefaultHistoryLimit, cfg.Editor.HistoryLimit)
	assert.Equal(t, "latest-leaf", cfg.Editor.AutoConnect)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Autosave.Schedule)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "biostream.yaml", `
server:
  addr: ":9000"
  shutdown_timeout: 3s
database:
  driver: postgres
  dsn: postgres://localhost/biostream
editor:
  history_limit: 20
  auto_connect: "off"
  author: lab
autosave:
  schedule: "@every 5m"
log:
  level: debug
  format: console
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 20, cfg.Editor.HistoryLimit)
	assert.Equal(t, "off", cfg.Editor.AutoConnect)
	assert.Equal(t, "lab", cfg.Editor.Author)
	assert.Equal(t, "@every 5m", cfg.Autosave.Schedule)
	assert.Len(t, cfg.EditorOptions(), 2)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "biostream.yaml", "server:\n  addr: \":9000\"\nlog:\n  level: debug\n")
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvDatabaseURL, "postgresql://db/biostream")
	t.Setenv(EnvHistoryLimit, "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver, "driver inferred from the URL")
	assert.Equal(t, 5, cfg.Editor.HistoryLimit)
}

func TestDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvAutoConnect)
	env := writeFile(t, ".env", "BIOSTREAM_AUTO_CONNECT=off\n")
	t.Cleanup(func() { os.Unsetenv(EnvAutoConnect) })

	cfg, err := Load("", env, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "off", cfg.Editor.AutoConnect)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown driver", "database:\n  driver: mysql\n", "unknown database.driver"},
		{"postgres without dsn", "database:\n  driver: postgres\n", "dsn is required"},
		{"bad policy", "editor:\n  auto_connect: nearest\n", "auto_connect"},
		{"bad schedule", "autosave:\n  schedule: every now and then\n", "autosave.schedule"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "c.yaml", "server: [unclosed"))
	assert.Error(t, err)

	t.Setenv(EnvHistoryLimit, "lots")
	_, err = Load("")
	assert.ErrorContains(t, err, EnvHistoryLimit)
}
