package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "3", cfg.AdminPlanID)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, time.Second, cfg.ReconcileInterval)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpires)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("RECONCILE_INTERVAL_MS", "250")
	t.Setenv("ADMIN_PLAN_ID", "9")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BackendURL)
	assert.Equal(t, 250*time.Millisecond, cfg.ReconcileInterval)
	assert.Equal(t, "9", cfg.AdminPlanID)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	content := `
backend_url: https://backend.internal/
storage_driver: memory
admin_plan_id: "7"
reconcile_interval_ms: 500
http_timeout_seconds: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("STOREFRONT_CONFIG", path)

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "https://backend.internal", cfg.BackendURL)
	assert.Equal(t, "7", cfg.AdminPlanID)
	assert.Equal(t, 500*time.Millisecond, cfg.ReconcileInterval)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("unknown storage driver", func(t *testing.T) {
		cfg := &Config{AppPort: "3000", JWTSecret: "s", AdminPlanID: "3", StorageDriver: "redis", ReconcileInterval: time.Second}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := &Config{AppPort: "3000", AdminPlanID: "3", StorageDriver: "memory", ReconcileInterval: time.Second}
		assert.Error(t, cfg.Validate())
	})

	t.Run("valid", func(t *testing.T) {
		cfg := &Config{AppPort: "3000", JWTSecret: "s", AdminPlanID: "3", StorageDriver: "file", ReconcileInterval: time.Second}
		assert.NoError(t, cfg.Validate())
	})
}
