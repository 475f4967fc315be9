package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ardhisaif/fpl-live-sync/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDev, cfg.AppEnv)
	require.Equal(t, "fpl-live-sync", cfg.ServiceName)
	require.Equal(t, "https://fantasy.premierleague.com/api", cfg.FPLBaseURL)
	require.Equal(t, 3, cfg.FPLMaxRetries)
	require.Equal(t, time.Second, cfg.FPLRetryBaseDelay)
	require.Equal(t, 60*time.Second, cfg.PollInterval)
	require.Equal(t, 4, cfg.SyncWorkers)
	require.True(t, cfg.FPLCircuitEnabled)
	require.Equal(t, logging.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("FPL_MAX_RETRIES", "1")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvProd, cfg.AppEnv)
	require.Equal(t, 1, cfg.FPLMaxRetries)
	require.Equal(t, 30*time.Second, cfg.PollInterval)
	require.Equal(t, logging.LevelDebug, cfg.LogLevel)
}

func TestLoadParsesPollGameweeks(t *testing.T) {
	t.Setenv("POLL_GAMEWEEKS", "7, 8,9")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []int{7, 8, 9}, cfg.PollGameweeks)
}

func TestLoadRejectsInvalidPollGameweeks(t *testing.T) {
	t.Setenv("POLL_GAMEWEEKS", "7,soon")

	_, err := Load()
	require.ErrorContains(t, err, "POLL_GAMEWEEKS")
}

func TestLoadRejectsInvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "sandbox")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnparsableDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "POLL_INTERVAL")
}

func TestLoadRejectsNonPositivePollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "0s")

	_, err := Load()
	require.ErrorContains(t, err, "validate config")
}

func TestLoadRequiresUptraceDSNWhenEnabled(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")

	_, err := Load()
	require.ErrorContains(t, err, "UPTRACE_DSN")
}
