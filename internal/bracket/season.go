package bracket

import "time"

const (
	DefaultSeasonEndWeek = 14

	RoundOne     = 1
	RoundTwo     = 2
	Championship = 3

	FirstSeed = 7
	LastSeed  = 12
)

// Season identifies one league year and everything the bracket needs to know about it.
type Season struct {
	LeagueID      int
	Year          int
	SeasonEndWeek int
}

func (s Season) endWeek() int {
	if s.SeasonEndWeek <= 0 {
		return DefaultSeasonEndWeek
	}
	return s.SeasonEndWeek
}

// WeekOfRound returns the calendar week a bracket round is scored in.
func (s Season) WeekOfRound(round int) int {
	return s.endWeek() + round
}

// RoundOfWeek maps a calendar week back to its bracket round.
func (s Season) RoundOfWeek(week int) (int, bool) {
	round := week - s.endWeek()
	if round < RoundOne || round > Championship {
		return 0, false
	}
	return round, true
}

func (s Season) BracketWeeks() []int {
	return []int{s.WeekOfRound(RoundOne), s.WeekOfRound(RoundTwo), s.WeekOfRound(Championship)}
}

func (s Season) LastRegularSeasonWeek() int {
	return s.endWeek()
}

// SeasonYear returns the league year that is running at t. The fantasy season
// spills into January and February, which still belong to the previous year.
func SeasonYear(t time.Time) int {
	if t.Month() < time.March {
		return t.Year() - 1
	}
	return t.Year()
}
