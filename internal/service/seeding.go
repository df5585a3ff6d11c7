package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/provider"
	"github.com/brthurr/espn-toilet/internal/store"
	"github.com/google/uuid"
)

// SeedMap maps a bracket seed (7-12) to the persisted team holding it.
type SeedMap map[int]uuid.UUID

type StandingsSeeder struct {
	teams  *store.TeamStore
	league provider.League
	logger *slog.Logger
	now    func() time.Time
}

func NewStandingsSeeder(teams *store.TeamStore, league provider.League, logger *slog.Logger) *StandingsSeeder {
	return &StandingsSeeder{teams: teams, league: league, logger: logging.OrDiscard(logger), now: time.Now}
}

// Seed selects the bottom six of the final regular-season standings. Ranks
// that cannot be matched to a persisted team are left out of the map.
func (s *StandingsSeeder) Seed(ctx context.Context, season bracket.Season) (SeedMap, error) {
	if season.Year == bracket.SeasonYear(s.now()) {
		week, err := s.league.CurrentWeek(ctx, season)
		if err != nil {
			return nil, fmt.Errorf("failed to get current week: %w", err)
		}
		if week.Number != season.LastRegularSeasonWeek() {
			return nil, fmt.Errorf("%w: league is in week %d, seeding runs in week %d",
				ErrRegularSeasonInProgress, week.Number, season.LastRegularSeasonWeek())
		}
	}

	standings, err := s.league.Standings(ctx, season, season.LastRegularSeasonWeek())
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}

	seeds := make(SeedMap, bracket.LastSeed-bracket.FirstSeed+1)
	for rank := bracket.FirstSeed; rank <= bracket.LastSeed && rank <= len(standings); rank++ {
		standing := standings[rank-1]
		team, found, err := s.resolve(ctx, standing, season.Year)
		if err != nil {
			return nil, err
		}
		if !found {
			s.logger.Warn("seeded team not found",
				logging.FieldYear, season.Year,
				logging.FieldSeed, rank,
				logging.FieldTeamName, standing.TeamName,
			)
			continue
		}
		seeds[rank] = team.ID
	}
	return seeds, nil
}

// resolve matches a standings row by display name first, then by provider id
// for teams that were renamed after the last sync.
func (s *StandingsSeeder) resolve(ctx context.Context, standing provider.Standing, year int) (*bracket.Team, bool, error) {
	team, found, err := s.teams.FindTeamByName(ctx, standing.TeamName, year)
	if err != nil || found {
		return team, found, err
	}
	if standing.TeamID == 0 {
		return nil, false, nil
	}
	return s.teams.FindTeamByESPNID(ctx, standing.TeamID, year)
}
