package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTemp(t *testing.T, contents string) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if contents != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	}
	require.NoError(t, Init(path))
	return path
}

func TestInitCreatesDirectory(t *testing.T) {
	path := initTemp(t, "")

	assert.Equal(t, filepath.Dir(path), GetConfigDir())
	assert.Equal(t, path, GetConfigFilePath())
	assert.DirExists(t, GetConfigDir())
	assert.Equal(t, filepath.Join(GetConfigDir(), "session.json"), GetSessionPath())
}

func TestDefaults(t *testing.T) {
	initTemp(t, "")

	assert.Equal(t, "file", GetString("store.backend"))
	assert.Equal(t, filepath.Join(GetConfigDir(), "store"), GetString("store.dir"))
	assert.Equal(t, 500, GetInt("store.max_records"))
	assert.Equal(t, 3*1024*1024, GetInt("store.max_bytes"))
	assert.Equal(t, 500*time.Millisecond, DebounceDelay())
	assert.Equal(t, "text", GetString("output.format"))
}

func TestUserConfigOverridesDefaults(t *testing.T) {
	initTemp(t, `
[store]
backend = "sql"
max_records = 250

[sql]
driver = "postgres"
dsn = "postgres://localhost/pageshare"

[sync]
debounce_ms = 50
`)

	cfg := Store()
	assert.Equal(t, "sql", cfg.Backend)
	assert.Equal(t, "postgres", cfg.SQL.Driver)
	assert.Equal(t, "postgres://localhost/pageshare", cfg.SQL.DSN)
	assert.Equal(t, 250, GetInt("store.max_records"))
	assert.Equal(t, 50*time.Millisecond, DebounceDelay())
}

func TestEnvironmentOverridesConfig(t *testing.T) {
	t.Setenv("PAGESHARE_STORE_BACKEND", "redis")
	t.Setenv("PAGESHARE_REDIS_PORT", "6380")
	initTemp(t, "[store]\nbackend = \"sql\"\n")

	cfg := Store()
	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.Equal(t, "pageshare:", cfg.Redis.Prefix)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "store"), expandPath("~/store"))
	assert.Equal(t, "/abs/store", expandPath("/abs/store"))
}

func TestSetStringPersists(t *testing.T) {
	path := initTemp(t, "")

	require.NoError(t, SetString("output.format", "json"))
	assert.FileExists(t, path)

	viper.Reset()
	require.NoError(t, Init(path))
	assert.Equal(t, "json", GetString("output.format"))
}

func TestTelemetry(t *testing.T) {
	t.Setenv("PAGESHARE_OTEL_ENABLED", "true")
	initTemp(t, "[otel]\nendpoint = \"tempo:4318\"\nsampling_rate = 0.25\n")

	cfg := Telemetry()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "tempo:4318", cfg.OTLPEndpoint)
	assert.Equal(t, "pageshare", cfg.ServiceName)
	assert.InDelta(t, 0.25, cfg.SamplingRate, 0.0001)
}
