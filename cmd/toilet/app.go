package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/config"
	"github.com/brthurr/espn-toilet/internal/db"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/metrics"
	"github.com/brthurr/espn-toilet/internal/provider"
	"github.com/brthurr/espn-toilet/internal/provider/espn"
	"github.com/brthurr/espn-toilet/internal/provider/fixture"
	"github.com/brthurr/espn-toilet/internal/service"
	"github.com/brthurr/espn-toilet/internal/store"
)

// app holds the process-wide collaborators shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sqlx.DB
	metrics *metrics.Recorder
	league  provider.League
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rec := metrics.NewRecorder()
	league, err := newLeague(cfg, logger, rec)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, db: database, metrics: rec, league: league}, nil
}

func newLeague(cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder) (provider.League, error) {
	var inner provider.League
	switch cfg.Provider {
	case config.ProviderFixture:
		l, err := fixture.Load(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		inner = l
	default:
		inner = espn.NewClient(espn.Config{
			BaseURL: cfg.ESPNBaseURL,
			S2:      cfg.ESPNS2,
			SWID:    cfg.SWID,
			Timeout: cfg.ProviderTimeout,
			Logger:  logger.With(logging.FieldProvider, cfg.Provider),
		})
	}

	return provider.NewRetrying(inner, provider.RetryConfig{
		Retries:         cfg.ProviderRetries,
		InitialInterval: cfg.ProviderBackoff,
		Logger:          logger.With(logging.FieldProvider, cfg.Provider),
		Metrics:         rec,
	}), nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) tournaments() *service.TournamentService {
	return service.NewTournamentService(a.db, a.league, a.logger, a.metrics)
}

func (a *app) teams() *service.TeamService {
	return service.NewTeamService(store.NewTeamStore(a.db), a.league, a.logger)
}

func (a *app) schedules() *service.ScheduleService {
	return service.NewScheduleService(store.NewScheduleStore(a.db), a.logger)
}

// seasonYear is the default season: the one in progress in league time.
func (a *app) seasonYear() int {
	return bracket.SeasonYear(time.Now().In(a.cfg.Location))
}
