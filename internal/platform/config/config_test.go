package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, 5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 60*time.Second, cfg.BreakerCooldown)
	assert.Equal(t, 5*time.Second, cfg.UpstreamConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.UpstreamReadTimeout)
	assert.True(t, cfg.IDChecksumEnabled)
	assert.True(t, cfg.DemoMode())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FINRISK_ADDR", ":9090")
	t.Setenv("FINRISK_UPSTREAM_API_KEY", "secret-key")
	t.Setenv("FINRISK_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("FINRISK_BREAKER_COOLDOWN", "30s")
	t.Setenv("FINRISK_ID_CHECKSUM_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5, cfg.RetryMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.BreakerCooldown)
	assert.False(t, cfg.IDChecksumEnabled)
	assert.False(t, cfg.DemoMode())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Run("bad upstream url", func(t *testing.T) {
		t.Setenv("FINRISK_UPSTREAM_BASE_URL", "not a url")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero attempts", func(t *testing.T) {
		t.Setenv("FINRISK_RETRY_MAX_ATTEMPTS", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero threshold", func(t *testing.T) {
		t.Setenv("FINRISK_BREAKER_FAILURE_THRESHOLD", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}
