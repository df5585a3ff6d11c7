package espn

import (
	"cmp"
	"slices"
	"strings"

	"github.com/brthurr/espn-toilet/internal/provider"
)

func teamName(t team) string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	return strings.TrimSpace(t.Location + " " + t.Nickname)
}

func mapTeams(doc *leagueResponse) []provider.Team {
	teams := make([]provider.Team, 0, len(doc.Teams))
	for _, t := range doc.Teams {
		owners := slices.Clone(t.Owners)
		if len(owners) == 0 && t.PrimaryOwner != "" {
			owners = []string{t.PrimaryOwner}
		}
		teams = append(teams, provider.Team{ID: t.ID, Name: teamName(t), OwnerIDs: owners})
	}
	return teams
}

// mapScores collects each team's weekly totals for every matchup period up to
// the league's current one. Later periods, and earlier ones the team had no
// matchup in, read as missing rather than as zero.
func mapScores(doc *leagueResponse) provider.Scores {
	current := doc.Status.CurrentMatchupPeriod
	scores := make(provider.Scores, len(doc.Teams))

	record := func(teamID, period int, points float64) {
		if teamID == 0 {
			return
		}
		scores.Set(teamID, period, points)
	}

	for _, m := range doc.Schedule {
		period := m.MatchupPeriodID
		if period < 1 || (current > 0 && period > current) {
			continue
		}
		record(m.Home.TeamID, period, m.Home.TotalPoints)
		if m.Away != nil {
			record(m.Away.TeamID, period, m.Away.TotalPoints)
		}
	}
	return scores
}

// mapStandings ranks teams by decided matchups through week, ordered by wins
// then points for. Team id breaks any remaining tie so the order is stable.
func mapStandings(doc *leagueResponse, week int) []provider.Standing {
	rows := make(map[int]*provider.Standing, len(doc.Teams))
	for _, t := range doc.Teams {
		rows[t.ID] = &provider.Standing{TeamID: t.ID, TeamName: teamName(t)}
	}

	for _, m := range doc.Schedule {
		if m.MatchupPeriodID < 1 || m.MatchupPeriodID > week || m.Away == nil {
			continue
		}
		if m.Winner == "" || m.Winner == winnerUndecided {
			continue
		}
		home, away := rows[m.Home.TeamID], rows[m.Away.TeamID]
		if home == nil || away == nil {
			continue
		}
		home.PointsFor += m.Home.TotalPoints
		away.PointsFor += m.Away.TotalPoints
		switch m.Winner {
		case winnerHome:
			home.Wins++
			away.Losses++
		case winnerAway:
			away.Wins++
			home.Losses++
		case winnerTie:
			home.Ties++
			away.Ties++
		}
	}

	standings := make([]provider.Standing, 0, len(rows))
	for _, row := range rows {
		standings = append(standings, *row)
	}
	slices.SortFunc(standings, func(a, b provider.Standing) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PointsFor, a.PointsFor); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})
	return standings
}

func mapWeek(doc *leagueResponse) provider.Week {
	return provider.Week{Number: doc.Status.CurrentMatchupPeriod, InProgress: doc.Status.IsActive}
}
