package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8000", cfg.UpstreamBaseURL)
	assert.Equal(t, DriverFile, cfg.PersistenceDriver)
	assert.Equal(t, 5*time.Minute, cfg.GraphCacheTTL)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("PERSISTENCE_DRIVER", "memory")
	t.Setenv("UPSTREAM_TIMEOUT", "45s")
	t.Setenv("ENABLE_METRICS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, DriverMemory, cfg.PersistenceDriver)
	assert.Equal(t, 45*time.Second, cfg.UpstreamTimeout)
	assert.False(t, cfg.EnableMetrics)
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := []byte("server_address: \":7070\"\nupstream_base_url: \"http://backend:8000\"\n")
	require.NoError(t, os.WriteFile(path, overlay, 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PERSISTENCE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// Overlay wins over env defaults; untouched fields keep env values.
	assert.Equal(t, ":7070", cfg.ServerAddress)
	assert.Equal(t, "http://backend:8000", cfg.UpstreamBaseURL)
	assert.Equal(t, DriverMemory, cfg.PersistenceDriver)
}

func TestLoadConfig_MissingOverlayFileFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("unknown driver rejected", func(t *testing.T) {
		cfg := &Config{PersistenceDriver: "redis"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("dynamodb requires table", func(t *testing.T) {
		cfg := &Config{PersistenceDriver: DriverDynamoDB}
		assert.Error(t, cfg.Validate())

		cfg.DynamoDBTable = "pmwiki-userdata"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("production requires upstream url", func(t *testing.T) {
		cfg := &Config{PersistenceDriver: DriverMemory, Environment: "production"}
		assert.Error(t, cfg.Validate())

		cfg.UpstreamBaseURL = "https://api.pmwiki.example"
		assert.NoError(t, cfg.Validate())
	})
}

func TestGetEnvDuration_PlainSecondsAndDurationStrings(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "90")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.UpstreamTimeout)
}
