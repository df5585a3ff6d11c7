package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/db"
	"github.com/brthurr/espn-toilet/internal/provider/fixture"
	"github.com/brthurr/espn-toilet/internal/store"
	"github.com/brthurr/espn-toilet/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testSeason = bracket.Season{LeagueID: 1, Year: 2023, SeasonEndWeek: 14}

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Connect("file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")
	t.Cleanup(func() { database.Close() })

	return database
}

func teamName(n int) string {
	return fmt.Sprintf("Team %d", n)
}

func ownerID(n int) string {
	return fmt.Sprintf("{OWNER-%02d}", n)
}

// newLeague returns a twelve team league whose standings rank team n at n.
func newLeague() *fixture.League {
	snap := fixture.Snapshot{CurrentWeek: 14, InProgress: true}
	for n := 1; n <= 12; n++ {
		snap.Teams = append(snap.Teams, fixture.SnapshotTeam{ID: n, Name: teamName(n), OwnerIDs: []string{ownerID(n)}})
		snap.Standings = append(snap.Standings, n)
	}
	return fixture.New(snap)
}

// createTeams persists teams 1-12 for testSeason and returns their ids by provider id.
func createTeams(t *testing.T, teams *store.TeamStore) map[int]uuid.UUID {
	t.Helper()
	ctx := context.Background()

	ids := make(map[int]uuid.UUID, 12)
	for n := 1; n <= 12; n++ {
		owner := &bracket.Owner{ESPNID: ownerID(n), Name: fmt.Sprintf("Owner %d", n)}
		require.NoError(t, teams.CreateOwner(ctx, owner))

		team := &bracket.Team{ESPNTeamID: utils.Ptr(n), OwnerID: owner.ID, Year: testSeason.Year, Name: teamName(n)}
		require.NoError(t, teams.CreateTeam(ctx, team))
		ids[n] = team.ID
	}
	return ids
}

func seedsFor(ids map[int]uuid.UUID) SeedMap {
	seeds := SeedMap{}
	for seed := bracket.FirstSeed; seed <= bracket.LastSeed; seed++ {
		seeds[seed] = ids[seed]
	}
	return seeds
}

func findGame(t *testing.T, games *store.BracketStore, round int, team1Seed *int) *bracket.Game {
	t.Helper()
	game, found, err := games.FindGame(context.Background(), store.GameFilter{
		Year:      testSeason.Year,
		Week:      testSeason.WeekOfRound(round),
		Round:     round,
		Team1Seed: team1Seed,
	})
	require.NoError(t, err)
	require.True(t, found, "round %d game with team1 seed %v", round, team1Seed)
	return game
}

// countingGames records how often the reconciler writes.
type countingGames struct {
	*store.BracketStore
	writes int
}

func (c *countingGames) UpdateGameResult(ctx context.Context, game *bracket.Game) error {
	c.writes++
	return c.BracketStore.UpdateGameResult(ctx, game)
}
