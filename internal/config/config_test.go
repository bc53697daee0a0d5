package config

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, 8085, cfg.Port)
	assert.Equal(t, ":8085", cfg.Address)
	assert.Equal(t, 200*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "web", cfg.WebRoot)
	assert.True(t, cfg.ServeStatic)
	assert.Equal(t, "sysfs", cfg.HardwareBackend)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.NotEqual(t, uuid.Nil, cfg.InstanceID)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.MQTTEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	id := uuid.New()
	t.Setenv("PORT", "9000")
	t.Setenv("POLL_INTERVAL", "1s")
	t.Setenv("HARDWARE_BACKEND", "DEMO")
	t.Setenv("SERVE_STATIC", "false")
	t.Setenv("INSTANCE_ID", id.String())
	t.Setenv("ALLOWED_ORIGINS", "http://a.local, http://b.local,")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Address)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, "demo", cfg.HardwareBackend)
	assert.False(t, cfg.ServeStatic)
	assert.Equal(t, id, cfg.InstanceID)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)
	assert.True(t, cfg.RedisEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("PORT", "abc")
	t.Setenv("POLL_INTERVAL", "-5s")

	cfg := Load()

	assert.Equal(t, 8085, cfg.Port)
	assert.Equal(t, 200*time.Millisecond, cfg.PollInterval)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()
	cfg.Port = 70000
	cfg.HardwareBackend = "wmi"
	cfg.MQTTBroker = "tcp://localhost:1883"
	cfg.MQTTTopic = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Port is invalid")
	assert.Contains(t, err.Error(), `HardwareBackend must be one of [sysfs demo], got "wmi"`)
	assert.Contains(t, err.Error(), "MQTTTopic is required")
}
