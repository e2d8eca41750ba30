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
	t.Run("loads defaults without file or env", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "botshop", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, ":8080", cfg.HTTP.Addr)
		assert.Equal(t, ":50051", cfg.GRPC.Addr)
		assert.True(t, cfg.GRPC.Enabled)
		assert.Equal(t, "file", cfg.Storage.Driver)
		assert.Equal(t, "data", cfg.Storage.DataDir)
		assert.Equal(t, "sequential", cfg.Engine.IDStrategy)
		assert.False(t, cfg.Engine.StrictValidation)
		assert.Equal(t, 5, cfg.Pagination.ProductsPageSize)
		assert.Equal(t, 3, cfg.Pagination.OrdersPageSize)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.False(t, cfg.IsProduction())
		assert.Empty(t, cfg.Log.Level)
		assert.Empty(t, cfg.Log.Format)
	})

	t.Run("environment overrides with BOTSHOP prefix", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("BOTSHOP_STORAGE_DRIVER", "redis")
		t.Setenv("BOTSHOP_REDIS_ADDR", "cache:6380")
		t.Setenv("BOTSHOP_ENGINE_STRICT_VALIDATION", "true")
		t.Setenv("BOTSHOP_GRPC_ENABLED", "false")
		t.Setenv("BOTSHOP_APP_ENV", "production")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "redis", cfg.Storage.Driver)
		assert.Equal(t, "cache:6380", cfg.Redis.Addr)
		assert.True(t, cfg.Engine.StrictValidation)
		assert.False(t, cfg.GRPC.Enabled)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("reads config.yaml", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		yaml := "storage:\n  driver: mysql\nmysql:\n  dsn: u:p@tcp(db:3306)/shop\nnotify:\n  workers: 8\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "mysql", cfg.Storage.Driver)
		assert.Equal(t, "u:p@tcp(db:3306)/shop", cfg.MySQL.DSN)
		assert.Equal(t, 8, cfg.Notify.Workers)
	})

	t.Run("rejects unknown storage driver", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("BOTSHOP_STORAGE_DRIVER", "mongo")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid storage driver")
	})

	t.Run("rejects unknown id strategy", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("BOTSHOP_ENGINE_ID_STRATEGY", "snowflake")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid engine id strategy")
	})
}
