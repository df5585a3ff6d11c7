package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BracketStore struct {
	db *sqlx.DB
}

func NewBracketStore(db *sqlx.DB) *BracketStore {
	return &BracketStore{db: db}
}

// GameFilter narrows a game lookup. Nil seeds are not part of the filter.
type GameFilter struct {
	Year      int
	Week      int
	Round     int
	Team1Seed *int
	Team2Seed *int
}

const (
	createGameQuery = `INSERT INTO games (id, year, week, round, team1_id, team1_seed, team2_id, team2_seed, team1_score, team2_score, status, created_at, updated_at)
		VALUES (:id, :year, :week, :round, :team1_id, :team1_seed, :team2_id, :team2_seed, :team1_score, :team2_score, :status, :created_at, :updated_at)`
	updateGameResultQuery = `UPDATE games SET
		team1_score = :team1_score,
		team2_score = :team2_score,
		status = :status,
		updated_at = :updated_at
		WHERE id = :id`
	stampResultQuery = `UPDATE games SET winner_team_id = ?, loser_team_id = ?, updated_at = ?
		WHERE id = ? AND loser_team_id IS NULL AND status = ?`
)

func (s *BracketStore) CreateGame(ctx context.Context, tx *sqlx.Tx, game *bracket.Game) error {
	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}
	now := time.Now().UTC()
	game.CreatedAt = now
	game.UpdatedAt = now
	_, err := tx.NamedExecContext(ctx, createGameQuery, game)
	return err
}

func (s *BracketStore) FindGame(ctx context.Context, f GameFilter) (*bracket.Game, bool, error) {
	return s.findGame(ctx, s.db, f)
}

func (s *BracketStore) FindGameTx(ctx context.Context, tx *sqlx.Tx, f GameFilter) (*bracket.Game, bool, error) {
	return s.findGame(ctx, tx, f)
}

func (s *BracketStore) findGame(ctx context.Context, q sqlx.QueryerContext, f GameFilter) (*bracket.Game, bool, error) {
	clauses := []string{"year = ?", "week = ?", "round = ?"}
	args := []any{f.Year, f.Week, f.Round}
	if f.Team1Seed != nil {
		clauses = append(clauses, "team1_seed = ?")
		args = append(args, *f.Team1Seed)
	}
	if f.Team2Seed != nil {
		clauses = append(clauses, "team2_seed = ?")
		args = append(args, *f.Team2Seed)
	}
	query := "SELECT * FROM games WHERE " + strings.Join(clauses, " AND ") + " ORDER BY created_at ASC LIMIT 1"

	var game bracket.Game
	found, err := getOptional(ctx, q, &game, s.db.Rebind(query), args...)
	if err != nil || !found {
		return nil, found, err
	}
	return &game, true, nil
}

func (s *BracketStore) GetGame(ctx context.Context, id uuid.UUID) (*bracket.Game, bool, error) {
	var game bracket.Game
	found, err := getOptional(ctx, s.db, &game, s.db.Rebind("SELECT * FROM games WHERE id = ?"), id)
	if err != nil || !found {
		return nil, found, err
	}
	return &game, true, nil
}

func (s *BracketStore) GetGameTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Game, bool, error) {
	var game bracket.Game
	found, err := getOptional(ctx, tx, &game, tx.Rebind("SELECT * FROM games WHERE id = ?"), id)
	if err != nil || !found {
		return nil, found, err
	}
	return &game, true, nil
}

func (s *BracketStore) GetGames(ctx context.Context, year int) ([]bracket.Game, error) {
	var games []bracket.Game
	err := s.db.SelectContext(ctx, &games, s.db.Rebind("SELECT * FROM games WHERE year = ? ORDER BY round ASC, week ASC, team1_seed ASC, created_at ASC"), year)
	return games, err
}

func (s *BracketStore) GetGamesForWeek(ctx context.Context, year, week int) ([]bracket.Game, error) {
	var games []bracket.Game
	err := s.db.SelectContext(ctx, &games, s.db.Rebind("SELECT * FROM games WHERE year = ? AND week = ? ORDER BY round ASC, team1_seed ASC, created_at ASC"), year, week)
	return games, err
}

// UpdateGameResult writes scores and status only.
func (s *BracketStore) UpdateGameResult(ctx context.Context, game *bracket.Game) error {
	game.UpdatedAt = time.Now().UTC()
	_, err := s.db.NamedExecContext(ctx, updateGameResultQuery, game)
	return err
}

// StampResult latches the winner and loser of a completed game. It reports false
// when the game was already stamped or is not completed, leaving the row untouched.
func (s *BracketStore) StampResult(ctx context.Context, tx *sqlx.Tx, gameID, winnerID, loserID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(stampResultQuery), winnerID, loserID, time.Now().UTC(), gameID, bracket.GameCompleted)
	if err != nil {
		return false, err
	}
	return rowsChanged(res)
}

// AssignSlot puts a team into an empty slot and moves the game to status.
// It reports false when the slot is already occupied.
func (s *BracketStore) AssignSlot(ctx context.Context, tx *sqlx.Tx, gameID uuid.UUID, slot bracket.Slot, teamID uuid.UUID, seed *int, status bracket.GameStatus) (bool, error) {
	var query string
	switch slot {
	case bracket.Slot1:
		query = "UPDATE games SET team1_id = ?, team1_seed = ?, status = ?, updated_at = ? WHERE id = ? AND team1_id IS NULL"
	case bracket.Slot2:
		query = "UPDATE games SET team2_id = ?, team2_seed = ?, status = ?, updated_at = ? WHERE id = ? AND team2_id IS NULL"
	default:
		return false, fmt.Errorf("unknown slot %d", slot)
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(query), teamID, seed, status, time.Now().UTC(), gameID)
	if err != nil {
		return false, err
	}
	return rowsChanged(res)
}
