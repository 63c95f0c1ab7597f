package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "jobmatch")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "jobmatch", cfg.App.AppName)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, int32(10), cfg.Database.PoolMaxConns)
	assert.Equal(t, 20, cfg.Match.DefaultLimit)
	assert.Equal(t, 100, cfg.Match.MaxLimit)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.ErrorIs(t, err, errMissingRequiredEnv)
	assert.Contains(t, err.Error(), "APP_NAME")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_DriverRequirements(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")

	_, err := Load("")
	require.ErrorIs(t, err, errMissingRequiredEnv)
	assert.Contains(t, err.Error(), "DB_HOST")

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/jobmatch")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)

	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGO_URI", "")
	_, err = Load("")
	require.ErrorIs(t, err, errMissingRequiredEnv)

	t.Setenv("STORE_DRIVER", "cassandra")
	_, err = Load("")
	assert.ErrorContains(t, err, "unsupported STORE_DRIVER")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_TTL", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "jobmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  http-port: "9090"
redis:
  host: cache.internal
  lock-ttl: 5s
match:
  default-limit: 5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 5, cfg.Match.DefaultLimit)
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "jobmatch")
	t.Setenv("DB_POOL_MAX_CONNS", "4")

	db, err := LoadDatabase("")
	require.NoError(t, err)
	assert.Equal(t, "db", db.DBHost)
	assert.Equal(t, int32(4), db.PoolMaxConns)
	assert.Equal(t, "disable", db.DBSSLMode)
}
