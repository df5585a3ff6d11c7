package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/store"
	"github.com/brthurr/espn-toilet/internal/utils"
	"github.com/jmoiron/sqlx"
)

type BracketBuilder struct {
	db     *sqlx.DB
	store  *store.BracketStore
	logger *slog.Logger
}

func NewBracketBuilder(db *sqlx.DB, store *store.BracketStore, logger *slog.Logger) *BracketBuilder {
	return &BracketBuilder{db: db, store: store, logger: logging.OrDiscard(logger)}
}

type BuildResult struct {
	Created  int
	Existing int
	Skipped  int
}

// Build lays out the season's game graph from seeds. Games already present are
// left alone, so running it again with the same seeds changes nothing.
func (b *BracketBuilder) Build(ctx context.Context, season bracket.Season, seeds SeedMap) (BuildResult, error) {
	var result BuildResult

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer tx.Rollback()

	for _, m := range bracket.Matchups {
		game, ok := newGame(season, m, seeds)
		if !ok {
			b.logger.Warn("skipping matchup with unseeded team",
				logging.FieldYear, season.Year,
				logging.FieldRound, m.Round,
				"team1_seed", m.Team1Seed,
				"team2_seed", m.Team2Seed,
			)
			result.Skipped++
			continue
		}

		_, found, err := b.store.FindGameTx(ctx, tx, gameKey(game))
		if err != nil {
			return result, fmt.Errorf("failed to look up round %d game: %w", m.Round, err)
		}
		if found {
			b.logger.Info("bracket game already exists",
				logging.FieldYear, season.Year,
				logging.FieldWeek, game.Week,
				logging.FieldRound, game.Round,
			)
			result.Existing++
			continue
		}

		if err := b.store.CreateGame(ctx, tx, game); err != nil {
			return result, fmt.Errorf("failed to create round %d game: %w", m.Round, err)
		}
		b.logger.Info("created bracket game",
			logging.FieldYear, season.Year,
			logging.FieldWeek, game.Week,
			logging.FieldRound, game.Round,
			logging.FieldGameID, game.ID,
		)
		result.Created++
	}

	return result, tx.Commit()
}

// newGame returns false when a seed the matchup needs has no team.
func newGame(season bracket.Season, m bracket.Matchup, seeds SeedMap) (*bracket.Game, bool) {
	game := &bracket.Game{
		Year:   season.Year,
		Week:   season.WeekOfRound(m.Round),
		Round:  m.Round,
		Status: bracket.GamePending,
	}

	if m.Team1Seed != 0 {
		id, ok := seeds[m.Team1Seed]
		if !ok {
			return nil, false
		}
		game.Team1ID = utils.Ptr(id)
		game.Team1Seed = utils.Ptr(m.Team1Seed)
	}
	if m.Team2Seed != 0 {
		id, ok := seeds[m.Team2Seed]
		if !ok {
			return nil, false
		}
		game.Team2ID = utils.Ptr(id)
		game.Team2Seed = utils.Ptr(m.Team2Seed)
	}

	if game.HasBothTeams() {
		game.Status = bracket.GameScheduled
	}
	return game, true
}

// gameKey identifies a game by the seeds known when it was created. Slots the
// advancer fills later are not part of the key.
func gameKey(g *bracket.Game) store.GameFilter {
	return store.GameFilter{
		Year:      g.Year,
		Week:      g.Week,
		Round:     g.Round,
		Team1Seed: g.Team1Seed,
		Team2Seed: g.Team2Seed,
	}
}
