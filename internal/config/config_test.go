package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location.String())
	assert.Equal(t, 7, cfg.TimelineDays)
	assert.Equal(t, 6, cfg.MonthsBack)
	assert.Equal(t, 5, cfg.MonthsForward)
	assert.Empty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.TracingEndpoint())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("FINHAWK_API_URL", "https://api.finhawk.test/")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://api.finhawk.test", cfg.FinHawkAPIURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "otel:4317", cfg.TracingEndpoint())
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Setenv("TIMELINE_DAYS", "0")
	t.Setenv("MONTHS_BACK", "30")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMELINE_DAYS")
	assert.Contains(t, err.Error(), "MONTHS_BACK")
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finhawk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7070\ntimeline_days: 14\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 14, cfg.TimelineDays)
}

func TestLoad_EnvBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finhawk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7070\n"), 0o600))
	t.Setenv("PORT", "6060")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Port)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=1111\nFINHAWK_DOTENV_ONLY=yes\n"), 0o600))
	t.Setenv("PORT", "2222")
	t.Cleanup(func() { os.Unsetenv("FINHAWK_DOTENV_ONLY") })

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "2222", os.Getenv("PORT"))
	assert.Equal(t, "yes", os.Getenv("FINHAWK_DOTENV_ONLY"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.Error(t, config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
