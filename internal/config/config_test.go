package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, "./data", cfg.Storage.LocalPath)
	assert.Equal(t, "us-east-1", cfg.Storage.AWSRegion)
	assert.Equal(t, 300, cfg.Redis.TTLSeconds)
	assert.Equal(t, 60, cfg.Engine.DailyMaxDays)
	assert.Equal(t, 180, cfg.Engine.WeeklyMaxDays)
	assert.Equal(t, 30, cfg.Audience.StaleProfileDays)
	assert.Equal(t, 90, cfg.Audience.DormantDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Storage.AWSEnabled())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9090
storage:
  local_path: /var/lib/analytics
  s3_bucket: snapshots-bucket
  dynamodb_table: snapshots-table
audience:
  stale_profile_days: 45
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "/var/lib/analytics", cfg.Storage.LocalPath)
	assert.True(t, cfg.Storage.AWSEnabled())
	assert.Equal(t, 45, cfg.Audience.StaleProfileDays)
	// Unset values still default.
	assert.Equal(t, 90, cfg.Audience.DormantDays)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "postgres://test", cfg.Database.URL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 99999\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  daily_max_days: 200\n  weekly_max_days: 100\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err, "granularity cutoffs must be increasing")

	require.NoError(t, os.WriteFile(path, []byte("not: [valid yaml\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
