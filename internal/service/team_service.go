package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/provider"
	"github.com/brthurr/espn-toilet/internal/store"
	"github.com/brthurr/espn-toilet/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type TeamService struct {
	store  *store.TeamStore
	league provider.League
	logger *slog.Logger
}

func NewTeamService(store *store.TeamStore, league provider.League, logger *slog.Logger) *TeamService {
	return &TeamService{store: store, league: league, logger: logging.OrDiscard(logger)}
}

type SyncResult struct {
	Created   int
	Updated   int
	Unchanged int
	Skipped   int
}

// SyncTeams brings the season's Team rows in line with the provider. Teams are
// keyed by their first owner; teams whose owner was never imported are skipped.
func (s *TeamService) SyncTeams(ctx context.Context, season bracket.Season) (SyncResult, error) {
	var result SyncResult

	teams, err := s.league.Teams(ctx, season)
	if err != nil {
		return result, fmt.Errorf("failed to get teams: %w", err)
	}

	for _, t := range teams {
		log := s.logger.With(logging.FieldYear, season.Year, logging.FieldTeamName, t.Name, "espn_team_id", t.ID)
		if err := s.syncTeam(ctx, season.Year, t, &result); err != nil {
			log.Warn("skipping team", "err", err)
			result.Skipped++
		}
	}
	return result, nil
}

func (s *TeamService) syncTeam(ctx context.Context, year int, t provider.Team, result *SyncResult) error {
	if len(t.OwnerIDs) == 0 {
		return fmt.Errorf("%w: team has no owners", ErrOwnerNotFound)
	}
	owner, found, err := s.store.GetOwnerByESPNID(ctx, t.OwnerIDs[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrOwnerNotFound, t.OwnerIDs[0])
	}

	team, found, err := s.store.FindTeamByOwner(ctx, owner.ID, year)
	if err != nil {
		return err
	}
	if !found {
		team = &bracket.Team{OwnerID: owner.ID, Year: year, Name: t.Name, ESPNTeamID: utils.Ptr(t.ID)}
		if err := s.store.CreateTeam(ctx, team); err != nil {
			return err
		}
		s.logger.Info("created team", logging.FieldYear, year, logging.FieldTeamName, t.Name)
		result.Created++
		return nil
	}

	if team.Name == t.Name && utils.OrZero(team.ESPNTeamID) == t.ID {
		result.Unchanged++
		return nil
	}
	team.Name = t.Name
	team.ESPNTeamID = utils.Ptr(t.ID)
	if err := s.store.UpdateTeam(ctx, team); err != nil {
		return err
	}
	s.logger.Info("updated team", logging.FieldYear, year, logging.FieldTeamName, t.Name)
	result.Updated++
	return nil
}

type ImportResult struct {
	Created int
	Skipped int
}

type ownerRecord struct {
	Fields struct {
		SID   string `json:"sid"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"fields"`
}

// ImportOwners loads owners from a fixture dump. Owners already present are
// left untouched.
func (s *TeamService) ImportOwners(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	var records []ownerRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return result, fmt.Errorf("failed to decode owners: %w", err)
	}

	for _, rec := range records {
		f := rec.Fields
		if f.SID == "" {
			s.logger.Warn("skipping owner without id", "name", f.Name)
			result.Skipped++
			continue
		}
		_, found, err := s.store.GetOwnerByESPNID(ctx, f.SID)
		if err != nil {
			return result, err
		}
		if found {
			s.logger.Info("owner already exists", "espn_id", f.SID)
			result.Skipped++
			continue
		}

		owner := &bracket.Owner{
			ESPNID: f.SID,
			Name:   f.Name,
			Email:  utils.StringOrNil(f.Email),
			Phone:  utils.StringOrNil(f.Phone),
		}
		if err := s.store.CreateOwner(ctx, owner); err != nil {
			return result, fmt.Errorf("failed to create owner %s: %w", f.SID, err)
		}
		result.Created++
	}
	return result, nil
}
