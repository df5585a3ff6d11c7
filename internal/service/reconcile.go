package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/metrics"
	"github.com/brthurr/espn-toilet/internal/provider"
	"github.com/brthurr/espn-toilet/internal/utils"
	"github.com/google/uuid"
)

// GameWriter is the slice of the game store the reconciler needs.
type GameWriter interface {
	GetGamesForWeek(ctx context.Context, year, week int) ([]bracket.Game, error)
	UpdateGameResult(ctx context.Context, game *bracket.Game) error
}

type TeamReader interface {
	GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, bool, error)
}

type ScoreReconciler struct {
	games   GameWriter
	teams   TeamReader
	league  provider.League
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func NewScoreReconciler(games GameWriter, teams TeamReader, league provider.League, logger *slog.Logger, rec *metrics.Recorder) *ScoreReconciler {
	return &ScoreReconciler{games: games, teams: teams, league: league, logger: logging.OrDiscard(logger), metrics: rec}
}

type ReconcileResult struct {
	Updated   int
	Unchanged int
	Skipped   int
}

// Reconcile copies the provider's scores for week onto that week's games. A
// game is only written when its scores or status actually change. Provider
// failures abort the run before anything is written.
func (r *ScoreReconciler) Reconcile(ctx context.Context, season bracket.Season, week int) (ReconcileResult, error) {
	var result ReconcileResult
	if _, ok := season.RoundOfWeek(week); !ok {
		return result, fmt.Errorf("%w: %d", ErrUnknownBracketWeek, week)
	}

	games, err := r.games.GetGamesForWeek(ctx, season.Year, week)
	if err != nil {
		return result, fmt.Errorf("failed to get games for week %d: %w", week, err)
	}
	if len(games) == 0 {
		return result, nil
	}

	current, err := r.league.CurrentWeek(ctx, season)
	if err != nil {
		return result, fmt.Errorf("failed to get current week: %w", err)
	}
	if current.InProgress && current.Number < week {
		r.logger.Debug("week not started",
			logging.FieldYear, season.Year,
			logging.FieldWeek, week,
			"current_week", current.Number,
		)
		return result, nil
	}

	scores, err := r.league.Scores(ctx, season)
	if err != nil {
		return result, fmt.Errorf("failed to get scores: %w", err)
	}

	status := bracket.GameInProgress
	if !current.InProgress || current.Number > week {
		status = bracket.GameCompleted
	}

	for i := range games {
		outcome := r.reconcileGame(ctx, &games[i], scores, status)
		r.metrics.RecordReconcile(outcome)
		switch outcome {
		case metrics.OutcomeUpdated:
			result.Updated++
		case metrics.OutcomeUnchanged:
			result.Unchanged++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

func (r *ScoreReconciler) reconcileGame(ctx context.Context, game *bracket.Game, scores provider.Scores, status bracket.GameStatus) string {
	log := r.logger.With(
		logging.FieldYear, game.Year,
		logging.FieldWeek, game.Week,
		logging.FieldRound, game.Round,
		logging.FieldGameID, game.ID,
	)

	if !game.HasBothTeams() {
		log.Debug("game awaiting opponent")
		return metrics.OutcomeSkipped
	}

	espn1, ok := r.externalID(ctx, log, *game.Team1ID)
	if !ok {
		return metrics.OutcomeSkipped
	}
	espn2, ok := r.externalID(ctx, log, *game.Team2ID)
	if !ok {
		return metrics.OutcomeSkipped
	}

	score1, ok1 := scores.ForWeek(espn1, game.Week)
	score2, ok2 := scores.ForWeek(espn2, game.Week)
	if !ok1 || !ok2 {
		log.Warn("provider has no score for week", "team1_espn_id", espn1, "team2_espn_id", espn2)
		return metrics.OutcomeSkipped
	}

	newStatus := game.Status.Max(status)
	if utils.PtrEqual(game.Team1Score, &score1) && utils.PtrEqual(game.Team2Score, &score2) && game.Status == newStatus {
		return metrics.OutcomeUnchanged
	}

	game.Team1Score = &score1
	game.Team2Score = &score2
	game.Status = newStatus
	if err := r.games.UpdateGameResult(ctx, game); err != nil {
		log.Error("failed to update game result", "err", err)
		return metrics.OutcomeSkipped
	}
	log.Info("updated game result", "team1_score", score1, "team2_score", score2, "status", newStatus)
	return metrics.OutcomeUpdated
}

func (r *ScoreReconciler) externalID(ctx context.Context, log *slog.Logger, teamID uuid.UUID) (int, bool) {
	team, found, err := r.teams.GetTeam(ctx, teamID)
	if err != nil {
		log.Error("failed to get team", logging.FieldTeamID, teamID, "err", err)
		return 0, false
	}
	if !found || team.ESPNTeamID == nil {
		log.Warn("team has no provider id", logging.FieldTeamID, teamID)
		return 0, false
	}
	return *team.ESPNTeamID, true
}
