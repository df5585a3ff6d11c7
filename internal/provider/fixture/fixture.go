package fixture

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/provider"
)

// Snapshot is a frozen view of a league, loaded from JSON for local runs.
type Snapshot struct {
	CurrentWeek int               `json:"current_week"`
	InProgress  bool              `json:"in_progress"`
	Teams       []SnapshotTeam    `json:"teams"`
	Standings   []int             `json:"standings"`
	Scores      map[int][]float64 `json:"scores"`
}

type SnapshotTeam struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	OwnerIDs []string `json:"owner_ids"`
}

// League serves a snapshot through the provider.League interface. It is safe
// for concurrent use and can be mutated between calls, which makes it a
// convenient stand-in for ESPN in tests.
type League struct {
	mu    sync.RWMutex
	snap  Snapshot
	err   error
	calls int
}

var _ provider.League = (*League)(nil)

func New(snap Snapshot) *League {
	return &League{snap: snap}
}

// Load reads a snapshot file.
func Load(path string) (*League, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var snap Snapshot
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return New(snap), nil
}

// Fail makes every subsequent call return err until Fail(nil).
func (l *League) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *League) SetWeek(week int, inProgress bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap.CurrentWeek = week
	l.snap.InProgress = inProgress
}

// SetScore records points for a team in week (1-based).
func (l *League) SetScore(teamID, week int, points float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snap.Scores == nil {
		l.snap.Scores = make(map[int][]float64)
	}
	provider.Scores(l.snap.Scores).Set(teamID, week, points)
}

// Calls reports how many interface calls have been served.
func (l *League) Calls() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.calls
}

func (l *League) begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.err
}

// Standings returns teams in snapshot order regardless of week.
func (l *League) Standings(ctx context.Context, season bracket.Season, week int) ([]provider.Standing, error) {
	if err := l.begin(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make(map[int]string, len(l.snap.Teams))
	for _, t := range l.snap.Teams {
		names[t.ID] = t.Name
	}
	standings := make([]provider.Standing, 0, len(l.snap.Standings))
	for _, id := range l.snap.Standings {
		standings = append(standings, provider.Standing{TeamID: id, TeamName: names[id]})
	}
	return standings, nil
}

func (l *League) Scores(ctx context.Context, season bracket.Season) (provider.Scores, error) {
	if err := l.begin(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	scores := make(provider.Scores, len(l.snap.Scores))
	for id, weeks := range l.snap.Scores {
		scores[id] = slices.Clone(weeks)
	}
	return scores, nil
}

func (l *League) CurrentWeek(ctx context.Context, season bracket.Season) (provider.Week, error) {
	if err := l.begin(); err != nil {
		return provider.Week{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.snap.CurrentWeek < 1 {
		return provider.Week{}, provider.ErrSeasonNotStarted
	}
	return provider.Week{Number: l.snap.CurrentWeek, InProgress: l.snap.InProgress}, nil
}

func (l *League) Teams(ctx context.Context, season bracket.Season) ([]provider.Team, error) {
	if err := l.begin(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	teams := make([]provider.Team, 0, len(l.snap.Teams))
	for _, t := range l.snap.Teams {
		teams = append(teams, provider.Team{ID: t.ID, Name: t.Name, OwnerIDs: slices.Clone(t.OwnerIDs)})
	}
	return teams, nil
}
