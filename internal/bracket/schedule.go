package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Schedule holds the NFL kickoff window of one week.
type Schedule struct {
	ID          uuid.UUID `db:"id"`
	Year        int       `db:"year"`
	Week        int       `db:"week"`
	EarlyGameAt time.Time `db:"early_game_at"`
	LateGameAt  time.Time `db:"late_game_at"`
	WeekStart   time.Time `db:"week_start"`
}

// PreviousTuesday returns 00:01 on the Tuesday strictly before t, in t's location.
// A Tuesday kickoff belongs to the week that started seven days earlier.
func PreviousTuesday(t time.Time) time.Time {
	days := (int(t.Weekday()) - int(time.Tuesday) + 7) % 7
	if days == 0 {
		days = 7
	}
	d := t.AddDate(0, 0, -days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 1, 0, 0, t.Location())
}

// CurrentRound maps now onto the bracket round that is being played. It returns
// 0 before the bracket begins. Past seasons are always in their final round.
func CurrentRound(season Season, schedules []Schedule, now time.Time) int {
	if season.Year < SeasonYear(now) {
		return Championship
	}

	round := 0
	var latest time.Time
	for _, s := range schedules {
		r, ok := season.RoundOfWeek(s.Week)
		if !ok || s.WeekStart.After(now) {
			continue
		}
		if s.WeekStart.After(latest) || round == 0 {
			latest = s.WeekStart
			round = r
		}
	}
	return round
}
