package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/brthurr/espn-toilet/internal/bracket"
)

const (
	ProviderESPN    = "espn"
	ProviderFixture = "fixture"
)

// Config holds process-wide settings. Core operations never read it directly;
// they receive a bracket.Season built by Season.
type Config struct {
	DatabaseURL   string
	LeagueID      int
	ESPNS2        string
	SWID          string
	ESPNBaseURL   string
	SeasonEndWeek int

	Provider    string
	FixturePath string

	Port              string
	ReconcileInterval time.Duration
	AdvanceSchedule   string
	Location          *time.Location

	ProviderRetries int
	ProviderBackoff time.Duration
	ProviderTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       envOrDefault("DATABASE_URL", "toilet.db?_journal_mode=WAL"),
		LeagueID:          intEnvOrDefault("ESPN_LEAGUE_ID", 0),
		ESPNS2:            envOrDefault("ESPN_S2", ""),
		SWID:              envOrDefault("SWID", ""),
		ESPNBaseURL:       envOrDefault("ESPN_BASE_URL", "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"),
		SeasonEndWeek:     intEnvOrDefault("SEASON_END_WEEK", bracket.DefaultSeasonEndWeek),
		Provider:          strings.ToLower(envOrDefault("PROVIDER", ProviderESPN)),
		FixturePath:       envOrDefault("FIXTURE_PATH", ""),
		Port:              envOrDefault("PORT", "8080"),
		ReconcileInterval: durationEnvOrDefault("RECONCILE_INTERVAL", 5*time.Minute),
		AdvanceSchedule:   envOrDefault("ADVANCE_SCHEDULE", "0 3 * * TUE"),
		ProviderRetries:   intEnvOrDefault("PROVIDER_RETRIES", 3),
		ProviderBackoff:   durationEnvOrDefault("PROVIDER_BACKOFF", 500*time.Millisecond),
		ProviderTimeout:   durationEnvOrDefault("PROVIDER_TIMEOUT", 15*time.Second),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "text"),
	}

	loc, err := time.LoadLocation(envOrDefault("TIMEZONE", "America/New_York"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderESPN:
		if c.LeagueID == 0 {
			return fmt.Errorf("ESPN_LEAGUE_ID environment variable is not set or invalid")
		}
	case ProviderFixture:
		if c.FixturePath == "" {
			return fmt.Errorf("FIXTURE_PATH must be set when PROVIDER=%s", ProviderFixture)
		}
	default:
		return fmt.Errorf("unknown PROVIDER %q", c.Provider)
	}
	if c.SeasonEndWeek < 1 {
		return fmt.Errorf("SEASON_END_WEEK must be positive, got %d", c.SeasonEndWeek)
	}
	return nil
}

// Season returns the explicit season value handed to core operations.
func (c *Config) Season(year int) bracket.Season {
	return bracket.Season{LeagueID: c.LeagueID, Year: year, SeasonEndWeek: c.SeasonEndWeek}
}

func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
