package bracket

import (
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GamePending    GameStatus = "Pending"
	GameScheduled  GameStatus = "Scheduled"
	GameInProgress GameStatus = "In Progress"
	GameCompleted  GameStatus = "Completed"
)

var statusOrder = map[GameStatus]int{
	GamePending:    0,
	GameScheduled:  1,
	GameInProgress: 2,
	GameCompleted:  3,
}

// Max returns the later of the two statuses. Game status only moves forward.
func (s GameStatus) Max(other GameStatus) GameStatus {
	if statusOrder[other] > statusOrder[s] {
		return other
	}
	return s
}

type Slot int

const (
	Slot1 Slot = 1
	Slot2 Slot = 2
)

type Game struct {
	ID   uuid.UUID `db:"id"`
	Year int       `db:"year"`
	// Calendar week the matchup is scored in
	Week  int `db:"week"`
	Round int `db:"round"`

	Team1ID   *uuid.UUID `db:"team1_id"`
	Team1Seed *int       `db:"team1_seed"`
	Team2ID   *uuid.UUID `db:"team2_id"`
	Team2Seed *int       `db:"team2_seed"`

	Team1Score *float64   `db:"team1_score"`
	Team2Score *float64   `db:"team2_score"`
	Status     GameStatus `db:"status"`

	WinnerTeamID *uuid.UUID `db:"winner_team_id"`
	LoserTeamID  *uuid.UUID `db:"loser_team_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (g *Game) HasBothTeams() bool {
	return g.Team1ID != nil && g.Team2ID != nil
}

// IsDecided reports whether the result has been stamped. The stamp is write-once.
func (g *Game) IsDecided() bool {
	return g.LoserTeamID != nil
}

func (g *Game) TeamInSlot(slot Slot) (*uuid.UUID, *int) {
	if slot == Slot1 {
		return g.Team1ID, g.Team1Seed
	}
	return g.Team2ID, g.Team2Seed
}

// Result is the outcome of a completed game.
type Result struct {
	Winner     uuid.UUID
	WinnerSeed *int
	Loser      uuid.UUID
	LoserSeed  *int
}

// Decide picks the loser by strict score comparison. On a tie the team with the
// numerically higher seed loses, and team2 loses when the seeds do not separate them.
func (g *Game) Decide() (Result, bool) {
	if !g.HasBothTeams() || g.Team1Score == nil || g.Team2Score == nil {
		return Result{}, false
	}

	team1Loses := *g.Team1Score < *g.Team2Score
	if *g.Team1Score == *g.Team2Score {
		team1Loses = g.Team1Seed != nil && g.Team2Seed != nil && *g.Team1Seed > *g.Team2Seed
	}

	if team1Loses {
		return Result{
			Winner:     *g.Team2ID,
			WinnerSeed: g.Team2Seed,
			Loser:      *g.Team1ID,
			LoserSeed:  g.Team1Seed,
		}, true
	}
	return Result{
		Winner:     *g.Team1ID,
		WinnerSeed: g.Team1Seed,
		Loser:      *g.Team2ID,
		LoserSeed:  g.Team2Seed,
	}, true
}

// Advancing returns the team and seed that move on along route. ok is false
// when the route follows an anchor seed neither team holds.
func (r Result) Advancing(route Route) (uuid.UUID, *int, bool) {
	switch route.Advances {
	case AdvanceWinner:
		return r.Winner, r.WinnerSeed, true
	case AdvanceAnchor:
		if r.WinnerSeed != nil && *r.WinnerSeed == route.SourceSeed {
			return r.Winner, r.WinnerSeed, true
		}
		if r.LoserSeed != nil && *r.LoserSeed == route.SourceSeed {
			return r.Loser, r.LoserSeed, true
		}
		return uuid.Nil, nil, false
	default:
		return r.Loser, r.LoserSeed, true
	}
}
