package provider

import (
	"context"
	"math"

	"github.com/brthurr/espn-toilet/internal/bracket"
)

// Standing is one row of the league table. Slices of Standing are ordered
// best first, so index 0 is rank 1.
type Standing struct {
	TeamID    int
	TeamName  string
	Wins      int
	Losses    int
	Ties      int
	PointsFor float64
}

// Team is a franchise as the provider reports it for a season.
type Team struct {
	ID       int
	Name     string
	OwnerIDs []string
}

// Week describes where the league currently is in its schedule.
type Week struct {
	Number     int
	InProgress bool
}

// Scores maps a provider team id to its weekly point totals. Index 0 holds week 1.
// Weeks a team has no total for hold NaN.
type Scores map[int][]float64

// Set records points for a team in week (1-based). Earlier weeks the team has
// no total for are padded as missing, not as zero.
func (s Scores) Set(teamID, week int, points float64) {
	if week < 1 {
		return
	}
	weeks := s[teamID]
	for len(weeks) < week {
		weeks = append(weeks, math.NaN())
	}
	weeks[week-1] = points
	s[teamID] = weeks
}

// ForWeek reports the team's total for week (1-based). ok is false when the
// provider has no entry for that week.
func (s Scores) ForWeek(teamID, week int) (float64, bool) {
	weeks, ok := s[teamID]
	if !ok || week < 1 || week > len(weeks) || math.IsNaN(weeks[week-1]) {
		return 0, false
	}
	return weeks[week-1], true
}

// League is everything the bracket engine needs from a fantasy provider.
type League interface {
	Standings(ctx context.Context, season bracket.Season, week int) ([]Standing, error)
	Scores(ctx context.Context, season bracket.Season) (Scores, error)
	CurrentWeek(ctx context.Context, season bracket.Season) (Week, error)
	Teams(ctx context.Context, season bracket.Season) ([]Team, error)
}
