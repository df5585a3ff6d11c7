package store

import (
	"context"
	"time"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TeamStore struct {
	db *sqlx.DB
}

const (
	getOwnerByESPNIDQuery = "SELECT * FROM owners WHERE espn_id = ?"
	createOwnerQuery      = `
		INSERT INTO owners (id, espn_id, name, email, phone, created_at) VALUES
		(:id, :espn_id, :name, :email, :phone, :created_at)
	`
	getTeamQuery          = "SELECT * FROM teams WHERE id = ?"
	getTeamByNameQuery    = "SELECT * FROM teams WHERE name = ? AND year = ? ORDER BY created_at ASC LIMIT 1"
	getTeamByESPNIDQuery  = "SELECT * FROM teams WHERE espn_team_id = ? AND year = ? ORDER BY created_at ASC LIMIT 1"
	getTeamByOwnerQuery   = "SELECT * FROM teams WHERE owner_id = ? AND year = ?"
	getTeamsForYearQuery  = "SELECT * FROM teams WHERE year = ? ORDER BY name ASC"
	createTeamQuery       = `
		INSERT INTO teams (id, espn_team_id, owner_id, year, name, created_at) VALUES
		(:id, :espn_team_id, :owner_id, :year, :name, :created_at)
	`
	updateTeamQuery = `
		UPDATE teams SET
		name = :name,
		espn_team_id = :espn_team_id
		WHERE id = :id
	`
)

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) GetOwnerByESPNID(ctx context.Context, espnID string) (*bracket.Owner, bool, error) {
	var owner bracket.Owner
	found, err := getOptional(ctx, s.db, &owner, s.db.Rebind(getOwnerByESPNIDQuery), espnID)
	if err != nil || !found {
		return nil, found, err
	}
	return &owner, true, nil
}

func (s *TeamStore) CreateOwner(ctx context.Context, owner *bracket.Owner) error {
	if owner.ID == uuid.Nil {
		owner.ID = uuid.New()
	}
	owner.CreatedAt = time.Now().UTC()
	_, err := s.db.NamedExecContext(ctx, createOwnerQuery, owner)
	return err
}

func (s *TeamStore) GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, bool, error) {
	return s.getTeam(ctx, getTeamQuery, id)
}

func (s *TeamStore) FindTeamByName(ctx context.Context, name string, year int) (*bracket.Team, bool, error) {
	return s.getTeam(ctx, getTeamByNameQuery, name, year)
}

func (s *TeamStore) FindTeamByESPNID(ctx context.Context, espnTeamID int, year int) (*bracket.Team, bool, error) {
	return s.getTeam(ctx, getTeamByESPNIDQuery, espnTeamID, year)
}

func (s *TeamStore) FindTeamByOwner(ctx context.Context, ownerID uuid.UUID, year int) (*bracket.Team, bool, error) {
	return s.getTeam(ctx, getTeamByOwnerQuery, ownerID, year)
}

func (s *TeamStore) getTeam(ctx context.Context, query string, args ...any) (*bracket.Team, bool, error) {
	var team bracket.Team
	found, err := getOptional(ctx, s.db, &team, s.db.Rebind(query), args...)
	if err != nil || !found {
		return nil, found, err
	}
	return &team, true, nil
}

func (s *TeamStore) GetTeams(ctx context.Context, year int) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := s.db.SelectContext(ctx, &teams, s.db.Rebind(getTeamsForYearQuery), year)
	return teams, err
}

func (s *TeamStore) CreateTeam(ctx context.Context, team *bracket.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	team.CreatedAt = time.Now().UTC()
	_, err := s.db.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *TeamStore) UpdateTeam(ctx context.Context, team *bracket.Team) error {
	_, err := s.db.NamedExecContext(ctx, updateTeamQuery, team)
	return err
}
