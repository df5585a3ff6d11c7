package service

import (
	"fmt"
	"sort"

	"github.com/brthurr/espn-toilet/internal/bracket"
)

type RoundView struct {
	Round int        `json:"round"`
	Week  int        `json:"week"`
	Name  string     `json:"name"`
	Games []GameView `json:"games"`
}

// GroupByRound lays games out round by round for display. Within a round,
// games are ordered by their anchoring seed.
func GroupByRound(games []GameView) []RoundView {
	byRound := make(map[int][]GameView)
	var roundNums []int
	for _, g := range games {
		if _, exists := byRound[g.Round]; !exists {
			roundNums = append(roundNums, g.Round)
		}
		byRound[g.Round] = append(byRound[g.Round], g)
	}

	sort.Ints(roundNums)

	rounds := make([]RoundView, 0, len(roundNums))
	for _, r := range roundNums {
		games := byRound[r]
		sort.SliceStable(games, func(i, j int) bool {
			return seedOrder(games[i].Team1Seed) < seedOrder(games[j].Team1Seed)
		})
		rounds = append(rounds, RoundView{
			Round: r,
			Week:  games[0].Week,
			Name:  roundName(r),
			Games: games,
		})
	}
	return rounds
}

// Unknown seeds sort last.
func seedOrder(seed *int) int {
	if seed == nil {
		return bracket.LastSeed + 1
	}
	return *seed
}

func roundName(round int) string {
	if round == bracket.Championship {
		return "Championship"
	}
	return fmt.Sprintf("Round %d", round)
}
