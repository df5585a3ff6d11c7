package espn

// leagueResponse is the subset of the fantasy v3 league document requested
// with the mTeam, mMatchupScore and mSettings views.
type leagueResponse struct {
	ID              int       `json:"id"`
	SeasonID        int       `json:"seasonId"`
	ScoringPeriodID int       `json:"scoringPeriodId"`
	Status          status    `json:"status"`
	Settings        settings  `json:"settings"`
	Teams           []team    `json:"teams"`
	Schedule        []matchup `json:"schedule"`
}

type status struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	FinalScoringPeriod   int  `json:"finalScoringPeriod"`
	FirstScoringPeriod   int  `json:"firstScoringPeriod"`
	IsActive             bool `json:"isActive"`
}

type settings struct {
	Name             string           `json:"name"`
	Size             int              `json:"size"`
	ScheduleSettings scheduleSettings `json:"scheduleSettings"`
}

type scheduleSettings struct {
	MatchupPeriodCount int `json:"matchupPeriodCount"`
}

type team struct {
	ID           int      `json:"id"`
	Abbreviation string   `json:"abbrev"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Nickname     string   `json:"nickname"`
	Owners       []string `json:"owners"`
	PrimaryOwner string   `json:"primaryOwner"`
}

type matchup struct {
	ID              int          `json:"id"`
	MatchupPeriodID int          `json:"matchupPeriodId"`
	Home            matchupTeam  `json:"home"`
	Away            *matchupTeam `json:"away"`
	Winner          string       `json:"winner"`
}

type matchupTeam struct {
	TeamID      int     `json:"teamId"`
	TotalPoints float64 `json:"totalPoints"`
}

const (
	winnerHome      = "HOME"
	winnerAway      = "AWAY"
	winnerTie       = "TIE"
	winnerUndecided = "UNDECIDED"
)
