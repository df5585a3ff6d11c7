package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/metrics"
	"github.com/brthurr/espn-toilet/internal/provider"
	"github.com/brthurr/espn-toilet/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TournamentService runs the bracket operations over whole seasons and week
// ranges. Callers serialize runs for the same year.
type TournamentService struct {
	games      *store.BracketStore
	teams      *store.TeamStore
	schedules  *store.ScheduleStore
	seeder     *StandingsSeeder
	builder    *BracketBuilder
	reconciler *ScoreReconciler
	advancer   *RoundAdvancer
	logger     *slog.Logger
	now        func() time.Time
}

func NewTournamentService(db *sqlx.DB, league provider.League, logger *slog.Logger, rec *metrics.Recorder) *TournamentService {
	logger = logging.OrDiscard(logger)
	games := store.NewBracketStore(db)
	teams := store.NewTeamStore(db)
	return &TournamentService{
		games:      games,
		teams:      teams,
		schedules:  store.NewScheduleStore(db),
		seeder:     NewStandingsSeeder(teams, league, logger),
		builder:    NewBracketBuilder(db, games, logger),
		reconciler: NewScoreReconciler(games, teams, league, logger, rec),
		advancer:   NewRoundAdvancer(db, games, logger, rec),
		logger:     logger,
		now:        time.Now,
	}
}

type TeamView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ESPNTeamID *int      `json:"espn_team_id,omitempty"`
}

type GameView struct {
	ID           uuid.UUID          `json:"id"`
	Year         int                `json:"year"`
	Week         int                `json:"week"`
	Round        int                `json:"round"`
	Status       bracket.GameStatus `json:"status"`
	Team1        *TeamView          `json:"team1"`
	Team1Seed    *int               `json:"team1_seed"`
	Team1Score   *float64           `json:"team1_score"`
	Team2        *TeamView          `json:"team2"`
	Team2Seed    *int               `json:"team2_seed"`
	Team2Score   *float64           `json:"team2_score"`
	WinnerTeamID *uuid.UUID         `json:"winner_team_id"`
	LoserTeamID  *uuid.UUID         `json:"loser_team_id"`
}

// BatchResult summarizes a multi-week run. Weeks that failed are listed and
// were logged; the other weeks were still processed.
type BatchResult struct {
	Weeks     []int `json:"weeks"`
	Failed    []int `json:"failed"`
	Updated   int   `json:"updated"`
	Advanced  int   `json:"advanced"`
	Unchanged int   `json:"unchanged"`
	Skipped   int   `json:"skipped"`
}

func (s *TournamentService) PopulateTournament(ctx context.Context, season bracket.Season) (BuildResult, error) {
	seeds, err := s.seeder.Seed(ctx, season)
	if err != nil {
		return BuildResult{}, err
	}
	s.logger.Info("seeded bracket", logging.FieldYear, season.Year, logging.FieldCount, len(seeds))
	return s.builder.Build(ctx, season, seeds)
}

func (s *TournamentService) UpdateGameResults(ctx context.Context, season bracket.Season, startWeek, endWeek int) (BatchResult, error) {
	return s.eachWeek(season, startWeek, endWeek, func(week int, result *BatchResult) error {
		return s.reconcileWeek(ctx, season, week, result)
	})
}

func (s *TournamentService) UpdateTournament(ctx context.Context, season bracket.Season, startWeek, endWeek int) (BatchResult, error) {
	return s.eachWeek(season, startWeek, endWeek, func(week int, result *BatchResult) error {
		return s.advanceWeek(ctx, season, week, result)
	})
}

// Refresh reconciles and then advances every bracket week in order, so a
// single call carries finished results as far through the bracket as they go.
func (s *TournamentService) Refresh(ctx context.Context, season bracket.Season) (BatchResult, error) {
	weeks := season.BracketWeeks()
	return s.eachWeek(season, weeks[0], weeks[len(weeks)-1], func(week int, result *BatchResult) error {
		if err := s.reconcileWeek(ctx, season, week, result); err != nil {
			return err
		}
		return s.advanceWeek(ctx, season, week, result)
	})
}

func (s *TournamentService) reconcileWeek(ctx context.Context, season bracket.Season, week int, result *BatchResult) error {
	res, err := s.reconciler.Reconcile(ctx, season, week)
	result.Updated += res.Updated
	result.Unchanged += res.Unchanged
	result.Skipped += res.Skipped
	return err
}

func (s *TournamentService) advanceWeek(ctx context.Context, season bracket.Season, week int, result *BatchResult) error {
	res, err := s.advancer.Advance(ctx, season, week)
	result.Advanced += res.Advanced
	result.Skipped += res.Skipped
	if err == nil && res.Failed > 0 {
		err = fmt.Errorf("%d games failed to advance", res.Failed)
	}
	return err
}

func (s *TournamentService) eachWeek(season bracket.Season, startWeek, endWeek int, fn func(week int, result *BatchResult) error) (BatchResult, error) {
	result := BatchResult{Weeks: []int{}, Failed: []int{}}
	if startWeek > endWeek {
		return result, fmt.Errorf("start week %d is after end week %d", startWeek, endWeek)
	}

	for week := startWeek; week <= endWeek; week++ {
		result.Weeks = append(result.Weeks, week)
		if err := fn(week, &result); err != nil {
			s.logger.Error("week failed",
				logging.FieldYear, season.Year,
				logging.FieldWeek, week,
				"err", err,
			)
			result.Failed = append(result.Failed, week)
		}
	}
	return result, nil
}

// GetTournamentData lists every game of a year with team names resolved.
func (s *TournamentService) GetTournamentData(ctx context.Context, year int) ([]GameView, error) {
	games, err := s.games.GetGames(ctx, year)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.GetTeams(ctx, year)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*TeamView, len(teams))
	for _, t := range teams {
		byID[t.ID] = &TeamView{ID: t.ID, Name: t.Name, ESPNTeamID: t.ESPNTeamID}
	}
	lookup := func(id *uuid.UUID) *TeamView {
		if id == nil {
			return nil
		}
		return byID[*id]
	}

	views := make([]GameView, 0, len(games))
	for _, g := range games {
		views = append(views, GameView{
			ID:           g.ID,
			Year:         g.Year,
			Week:         g.Week,
			Round:        g.Round,
			Status:       g.Status,
			Team1:        lookup(g.Team1ID),
			Team1Seed:    g.Team1Seed,
			Team1Score:   g.Team1Score,
			Team2:        lookup(g.Team2ID),
			Team2Seed:    g.Team2Seed,
			Team2Score:   g.Team2Score,
			WinnerTeamID: g.WinnerTeamID,
			LoserTeamID:  g.LoserTeamID,
		})
	}
	return views, nil
}

func (s *TournamentService) CurrentRound(ctx context.Context, season bracket.Season) (int, error) {
	schedules, err := s.schedules.GetSchedules(ctx, season.Year)
	if err != nil {
		return 0, err
	}
	return bracket.CurrentRound(season, schedules, s.now()), nil
}

// ActiveWeeks returns the weeks worth polling. Inside the bracket that is the
// current round's week plus the one before it: the provider only rolls its
// current week after the new week starts, so the previous week's games are
// still waiting to be marked Completed. Outside the bracket every bracket week
// is polled.
func (s *TournamentService) ActiveWeeks(ctx context.Context, season bracket.Season) ([]int, error) {
	round, err := s.CurrentRound(ctx, season)
	if err != nil {
		return nil, err
	}
	if round == 0 {
		return season.BracketWeeks(), nil
	}
	if round == bracket.RoundOne {
		return []int{season.WeekOfRound(round)}, nil
	}
	return []int{season.WeekOfRound(round - 1), season.WeekOfRound(round)}, nil
}
