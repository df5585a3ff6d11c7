package bracket

import (
	"testing"
	"time"

	"github.com/brthurr/espn-toilet/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(seed1, seed2 int, score1, score2 float64) *Game {
	return &Game{
		Round:      RoundOne,
		Team1ID:    utils.Ptr(uuid.New()),
		Team1Seed:  utils.Ptr(seed1),
		Team2ID:    utils.Ptr(uuid.New()),
		Team2Seed:  utils.Ptr(seed2),
		Team1Score: utils.Ptr(score1),
		Team2Score: utils.Ptr(score2),
		Status:     GameCompleted,
	}
}

func TestDecide(t *testing.T) {
	testCases := []struct {
		name      string
		game      *Game
		wantLoser Slot
	}{
		{name: "team1 lower score", game: newGame(7, 10, 80, 95), wantLoser: Slot1},
		{name: "team2 lower score", game: newGame(8, 9, 120.5, 99.2), wantLoser: Slot2},
		{name: "tie goes against higher seed in slot 1", game: newGame(11, 9, 100, 100), wantLoser: Slot1},
		{name: "tie goes against higher seed in slot 2", game: newGame(7, 10, 100, 100), wantLoser: Slot2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := tc.game.Decide()
			require.True(t, ok)

			loserID, loserSeed := tc.game.TeamInSlot(tc.wantLoser)
			assert.Equal(t, *loserID, result.Loser)
			assert.Equal(t, *loserSeed, *result.LoserSeed)
			assert.NotEqual(t, result.Winner, result.Loser)
		})
	}
}

func TestDecide_TieWithoutSeedsTeam2Loses(t *testing.T) {
	g := newGame(0, 0, 50, 50)
	g.Team1Seed = nil
	g.Team2Seed = nil

	result, ok := g.Decide()
	require.True(t, ok)
	assert.Equal(t, *g.Team2ID, result.Loser)
}

func TestDecide_IncompleteGame(t *testing.T) {
	g := newGame(11, 7, 10, 20)
	g.Team2ID = nil
	_, ok := g.Decide()
	assert.False(t, ok)

	g = newGame(11, 7, 10, 20)
	g.Team1Score = nil
	_, ok = g.Decide()
	assert.False(t, ok)
}

func TestRouteFor(t *testing.T) {
	r, ok := RouteFor(&Game{Round: RoundOne, Team1Seed: utils.Ptr(7)})
	require.True(t, ok)
	assert.Equal(t, RoundTwo, r.DestRound)
	assert.Equal(t, 11, r.DestSeed)
	assert.Equal(t, Slot2, r.DestSlot)

	r, ok = RouteFor(&Game{Round: RoundOne, Team1Seed: utils.Ptr(8)})
	require.True(t, ok)
	assert.Equal(t, 12, r.DestSeed)

	r, ok = RouteFor(&Game{Round: RoundTwo, Team1Seed: utils.Ptr(12)})
	require.True(t, ok)
	assert.Equal(t, Championship, r.DestRound)
	assert.Equal(t, Slot2, r.DestSlot)

	_, ok = RouteFor(&Game{Round: Championship, Team1Seed: utils.Ptr(11)})
	assert.False(t, ok)
	_, ok = RouteFor(&Game{Round: RoundOne})
	assert.False(t, ok)

	assert.True(t, IsTerminal(Championship))
	assert.False(t, IsTerminal(RoundOne))
}

func TestAdvancingFollowsRoute(t *testing.T) {
	// Seed 11 wins its round two game; seed 7 loses.
	g := newGame(11, 7, 100, 80)
	g.Round = RoundTwo
	res, ok := g.Decide()
	require.True(t, ok)

	route, ok := RouteFor(g)
	require.True(t, ok)
	team, seed, ok := res.Advancing(route)
	require.True(t, ok)
	assert.Equal(t, *g.Team1ID, team)
	assert.Equal(t, 11, *seed)

	// Losing doesn't change who holds the anchor seed.
	g = newGame(12, 8, 60, 110)
	g.Round = RoundTwo
	res, _ = g.Decide()
	route, _ = RouteFor(g)
	team, seed, ok = res.Advancing(route)
	require.True(t, ok)
	assert.Equal(t, *g.Team1ID, team)
	assert.Equal(t, 12, *seed)

	// Round one sends the loser on.
	g = newGame(7, 10, 80, 95)
	res, _ = g.Decide()
	route, _ = RouteFor(g)
	team, seed, ok = res.Advancing(route)
	require.True(t, ok)
	assert.Equal(t, *g.Team1ID, team)
	assert.Equal(t, 7, *seed)

	_, _, ok = res.Advancing(Route{Advances: AdvanceAnchor, SourceSeed: 11})
	assert.False(t, ok)
}

func TestSeasonWeeks(t *testing.T) {
	s := Season{Year: 2023, SeasonEndWeek: 14}
	assert.Equal(t, []int{15, 16, 17}, s.BracketWeeks())

	round, ok := s.RoundOfWeek(16)
	assert.True(t, ok)
	assert.Equal(t, RoundTwo, round)

	_, ok = s.RoundOfWeek(14)
	assert.False(t, ok)
	_, ok = s.RoundOfWeek(18)
	assert.False(t, ok)

	// zero value falls back to the default regular season length
	assert.Equal(t, 15, Season{}.WeekOfRound(RoundOne))
}

func TestStatusMax(t *testing.T) {
	assert.Equal(t, GameCompleted, GameCompleted.Max(GameInProgress))
	assert.Equal(t, GameInProgress, GameScheduled.Max(GameInProgress))
	assert.Equal(t, GameScheduled, GamePending.Max(GameScheduled))
}

func TestPreviousTuesday(t *testing.T) {
	loc := time.UTC
	// Sunday kickoff
	sunday := time.Date(2023, 12, 17, 13, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2023, 12, 12, 0, 1, 0, 0, loc), PreviousTuesday(sunday))

	// Tuesday goes back a full week
	tuesday := time.Date(2023, 12, 19, 20, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2023, 12, 12, 0, 1, 0, 0, loc), PreviousTuesday(tuesday))

	// Saturday games across a month boundary
	saturday := time.Date(2023, 12, 2, 16, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2023, 11, 28, 0, 1, 0, 0, loc), PreviousTuesday(saturday))
}

func TestCurrentRound(t *testing.T) {
	season := Season{Year: 2023, SeasonEndWeek: 14}
	schedules := []Schedule{
		{Year: 2023, Week: 15, WeekStart: time.Date(2023, 12, 12, 0, 1, 0, 0, time.UTC)},
		{Year: 2023, Week: 16, WeekStart: time.Date(2023, 12, 19, 0, 1, 0, 0, time.UTC)},
		{Year: 2023, Week: 17, WeekStart: time.Date(2023, 12, 26, 0, 1, 0, 0, time.UTC)},
	}

	assert.Equal(t, 0, CurrentRound(season, schedules, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, RoundOne, CurrentRound(season, schedules, time.Date(2023, 12, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, RoundTwo, CurrentRound(season, schedules, time.Date(2023, 12, 21, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Championship, CurrentRound(season, schedules, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

	// past seasons are finished
	assert.Equal(t, Championship, CurrentRound(Season{Year: 2021}, nil, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)))
}
