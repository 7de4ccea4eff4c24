package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("STORAGE_PUBLIC_ENDPOINT", "files.example.com:9000")
	t.Setenv("AUTH_RATE_LIMIT_RPS", "2.5")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, "files.example.com:9000", cfg.Storage.PublicEndpoint)
	assert.Equal(t, 2.5, cfg.Auth.RateLimitRPS)
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, 86400, cfg.Storage.LinkLifetimeSec)
	assert.Equal(t, 24*time.Hour, cfg.Storage.LinkLifetime())
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL())
	assert.Equal(t, "fileapi", cfg.Tracing.ServiceName)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	assert.Error(t, cfg.Validate())

	cfg.Auth.Secret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.LinkLifetimeSec = 0
	assert.Error(t, cfg.Validate())
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Jakarta"}
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&AppConfig{Env: "prod"}).IsProduction())
	assert.True(t, (&AppConfig{Env: "production"}).IsProduction())
	assert.False(t, (&AppConfig{Env: "dev"}).IsProduction())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	t.Setenv(key, "")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_FLOAT_VAR"

	t.Setenv(key, "0.5")
	assert.Equal(t, 0.5, getEnvFloat(key, 1))

	t.Setenv(key, "nope")
	assert.Equal(t, 1.0, getEnvFloat(key, 1))
}
