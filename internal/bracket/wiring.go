package bracket

// Outcome selects which side of a finished game moves on.
type Outcome int

const (
	AdvanceLoser Outcome = iota
	AdvanceWinner
	// AdvanceAnchor moves on whichever team holds the route's source seed.
	AdvanceAnchor
)

// Matchup is a game the bracket builder creates. A zero seed is an open slot
// that the round advancer fills later.
type Matchup struct {
	Round     int
	Team1Seed int
	Team2Seed int
}

func (m Matchup) IsPlaceholder() bool {
	return m.Team1Seed == 0 || m.Team2Seed == 0
}

// Matchups lists every game in the bracket, in creation order.
var Matchups = []Matchup{
	{Round: RoundOne, Team1Seed: 7, Team2Seed: 10},
	{Round: RoundOne, Team1Seed: 8, Team2Seed: 9},
	{Round: RoundTwo, Team1Seed: 11},
	{Round: RoundTwo, Team1Seed: 12},
	{Round: Championship},
}

// Route sends one side of a finished game into an open slot of a later game.
// Source and destination games are identified by their round and team1 seed;
// a zero DestSeed means the destination round has a single game.
type Route struct {
	Round      int
	SourceSeed int
	Advances   Outcome
	DestRound  int
	DestSeed   int
	DestSlot   Slot
}

// Routes is the fixed wiring of the bracket. Round one losers meet the byes;
// each round two game then sends the holder of its bye seed to the final.
var Routes = []Route{
	{Round: RoundOne, SourceSeed: 7, Advances: AdvanceLoser, DestRound: RoundTwo, DestSeed: 11, DestSlot: Slot2},
	{Round: RoundOne, SourceSeed: 8, Advances: AdvanceLoser, DestRound: RoundTwo, DestSeed: 12, DestSlot: Slot2},
	{Round: RoundTwo, SourceSeed: 11, Advances: AdvanceAnchor, DestRound: Championship, DestSlot: Slot1},
	{Round: RoundTwo, SourceSeed: 12, Advances: AdvanceAnchor, DestRound: Championship, DestSlot: Slot2},
}

// RouteFor finds the route leaving a game. Championship games have none.
func RouteFor(g *Game) (Route, bool) {
	if g.Team1Seed == nil {
		return Route{}, false
	}
	for _, r := range Routes {
		if r.Round == g.Round && r.SourceSeed == *g.Team1Seed {
			return r, true
		}
	}
	return Route{}, false
}

// IsTerminal reports whether a round has nowhere to propagate to.
func IsTerminal(round int) bool {
	for _, r := range Routes {
		if r.Round == round {
			return false
		}
	}
	return true
}
