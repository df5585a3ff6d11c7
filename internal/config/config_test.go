package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "ESPN_LEAGUE_ID", "ESPN_S2", "SWID", "ESPN_BASE_URL", "SEASON_END_WEEK",
		"PROVIDER", "FIXTURE_PATH", "PORT", "RECONCILE_INTERVAL", "ADVANCE_SCHEDULE", "TIMEZONE",
		"PROVIDER_RETRIES", "PROVIDER_BACKOFF", "PROVIDER_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ESPN_LEAGUE_ID", "123456")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 123456, cfg.LeagueID)
	assert.Equal(t, "toilet.db?_journal_mode=WAL", cfg.DatabaseURL)
	assert.Equal(t, 14, cfg.SeasonEndWeek)
	assert.Equal(t, ProviderESPN, cfg.Provider)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 5*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, "0 3 * * TUE", cfg.AdvanceSchedule)
	assert.Equal(t, "America/New_York", cfg.Location.String())
	assert.Equal(t, 3, cfg.ProviderRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.ProviderBackoff)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER", "Fixture")
	t.Setenv("FIXTURE_PATH", "testdata/league.json")
	t.Setenv("SEASON_END_WEEK", "15")
	t.Setenv("RECONCILE_INTERVAL", "30s")
	t.Setenv("PROVIDER_RETRIES", "not-a-number")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderFixture, cfg.Provider)
	assert.Equal(t, 15, cfg.SeasonEndWeek)
	assert.Equal(t, 30*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, 3, cfg.ProviderRetries)

	season := cfg.Season(2024)
	assert.Equal(t, 2024, season.Year)
	assert.Equal(t, 15, season.SeasonEndWeek)
}

func TestLoadValidation(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorContains(t, err, "ESPN_LEAGUE_ID")

	t.Setenv("PROVIDER", "fixture")
	_, err = Load()
	assert.ErrorContains(t, err, "FIXTURE_PATH")

	t.Setenv("PROVIDER", "yahoo")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown PROVIDER")

	t.Setenv("PROVIDER", "espn")
	t.Setenv("ESPN_LEAGUE_ID", "1")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.ErrorContains(t, err, "TIMEZONE")
}
