package config_test

import (
	"testing"
	"time"

	"github.com/seelevollerei/skland-signin/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.True(t, cfg.AutoSignEnabled)
	require.Equal(t, 1, cfg.AutoSignHour)
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, 10*time.Second, cfg.AttemptTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTO_SIGN_HOUR", "7")
	t.Setenv("AUTO_SIGN_ENABLED", "false")
	t.Setenv("MAX_RETRIES", "5")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.AutoSignHour)
	require.False(t, cfg.AutoSignEnabled)
	require.Equal(t, 5, cfg.MaxRetries)
}

func TestLoad_ClampsHour(t *testing.T) {
	t.Setenv("AUTO_SIGN_HOUR", "99")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 23, cfg.AutoSignHour)

	t.Setenv("AUTO_SIGN_HOUR", "-1")
	cfg, err = config.Load()
	require.NoError(t, err)
	require.Equal(t, 0, cfg.AutoSignHour)
}
