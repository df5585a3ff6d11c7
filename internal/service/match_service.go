package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/metrics"
	"github.com/brthurr/espn-toilet/internal/store"
	"github.com/brthurr/espn-toilet/internal/utils"
	"github.com/jmoiron/sqlx"
)

// RoundAdvancer stamps the result of completed games and moves the advancing
// team into its next game.
type RoundAdvancer struct {
	db      *sqlx.DB
	store   *store.BracketStore
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func NewRoundAdvancer(db *sqlx.DB, store *store.BracketStore, logger *slog.Logger, rec *metrics.Recorder) *RoundAdvancer {
	return &RoundAdvancer{db: db, store: store, logger: logging.OrDiscard(logger), metrics: rec}
}

type AdvanceResult struct {
	Advanced int
	Skipped  int
	Failed   int
}

// Advance handles every completed, undecided game of week. Each game commits
// on its own so one bad row does not hold back the rest. When a game's
// destination placeholder is missing the game is counted as failed and left
// without a result, so the next run stamps and propagates it together.
func (s *RoundAdvancer) Advance(ctx context.Context, season bracket.Season, week int) (AdvanceResult, error) {
	var result AdvanceResult
	round, ok := season.RoundOfWeek(week)
	if !ok {
		return result, fmt.Errorf("%w: %d", ErrUnknownBracketWeek, week)
	}

	games, err := s.store.GetGamesForWeek(ctx, season.Year, week)
	if err != nil {
		return result, fmt.Errorf("failed to get games for week %d: %w", week, err)
	}

	for i := range games {
		game := &games[i]
		if game.Round != round || game.Status != bracket.GameCompleted || game.IsDecided() {
			continue
		}

		log := s.logger.With(
			logging.FieldYear, game.Year,
			logging.FieldWeek, game.Week,
			logging.FieldRound, game.Round,
			logging.FieldGameID, game.ID,
		)

		res, ok := game.Decide()
		if !ok {
			log.Warn("completed game is missing a team or score")
			result.Skipped++
			continue
		}

		advanced, err := s.advanceGame(ctx, season, game, res)
		if err != nil {
			log.Error("failed to advance game", "err", err)
			result.Failed++
			continue
		}
		if !advanced {
			log.Info("game already decided")
			result.Skipped++
			continue
		}

		s.metrics.RecordAdvance(strconv.Itoa(game.Round))
		log.Info("advanced game", "winner_team_id", res.Winner, "loser_team_id", res.Loser)
		result.Advanced++
	}
	return result, nil
}

// advanceGame reports false when another run stamped the game first. The
// destination is checked before stamping so a missing placeholder leaves the
// game undecided and a later run can finish it.
func (s *RoundAdvancer) advanceGame(ctx context.Context, season bracket.Season, game *bracket.Game, res bracket.Result) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	route, hasRoute := bracket.RouteFor(game)
	if !hasRoute && !bracket.IsTerminal(game.Round) {
		return false, fmt.Errorf("%w: round %d team1 seed %v", ErrNoRoute, game.Round, utils.OrZero(game.Team1Seed))
	}

	var dest *bracket.Game
	if hasRoute {
		filter := store.GameFilter{
			Year:  season.Year,
			Week:  season.WeekOfRound(route.DestRound),
			Round: route.DestRound,
		}
		if route.DestSeed != 0 {
			filter.Team1Seed = utils.Ptr(route.DestSeed)
		}
		found := false
		dest, found, err = s.store.FindGameTx(ctx, tx, filter)
		if err != nil {
			return false, fmt.Errorf("failed to find round %d game: %w", route.DestRound, err)
		}
		if !found {
			return false, fmt.Errorf("%w: round %d week %d", ErrPlaceholderMissing, filter.Round, filter.Week)
		}
	}

	stamped, err := s.store.StampResult(ctx, tx, game.ID, res.Winner, res.Loser)
	if err != nil {
		return false, fmt.Errorf("failed to stamp result: %w", err)
	}
	if !stamped {
		return false, nil
	}

	if dest != nil {
		if err := s.fillSlot(ctx, tx, dest, route, res); err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

func (s *RoundAdvancer) fillSlot(ctx context.Context, tx *sqlx.Tx, dest *bracket.Game, route bracket.Route, res bracket.Result) error {
	teamID, seed, ok := res.Advancing(route)
	if !ok {
		return fmt.Errorf("%w: no team holds seed %d", ErrNoRoute, route.SourceSeed)
	}

	occupant, _ := dest.TeamInSlot(route.DestSlot)
	if occupant != nil {
		if *occupant == teamID {
			return nil
		}
		return fmt.Errorf("%w: game %s slot %d", ErrSlotOccupied, dest.ID, route.DestSlot)
	}

	other := bracket.Slot1
	if route.DestSlot == bracket.Slot1 {
		other = bracket.Slot2
	}
	status := dest.Status
	if opponent, _ := dest.TeamInSlot(other); opponent != nil {
		status = status.Max(bracket.GameScheduled)
	}

	assigned, err := s.store.AssignSlot(ctx, tx, dest.ID, route.DestSlot, teamID, seed, status)
	if err != nil {
		return fmt.Errorf("failed to assign slot: %w", err)
	}
	if !assigned {
		return fmt.Errorf("%w: game %s slot %d", ErrSlotOccupied, dest.ID, route.DestSlot)
	}
	return nil
}
