package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/metrics"
)

type flakeyLeague struct {
	failures int
	err      error
	calls    int
}

func (f *flakeyLeague) fail() error {
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return f.err
		}
		return errors.New("connection reset")
	}
	return nil
}

func (f *flakeyLeague) Standings(ctx context.Context, season bracket.Season, week int) ([]Standing, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return []Standing{{TeamID: 1, TeamName: "Alpha"}}, nil
}

func (f *flakeyLeague) Scores(ctx context.Context, season bracket.Season) (Scores, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return Scores{1: {100.5}}, nil
}

func (f *flakeyLeague) CurrentWeek(ctx context.Context, season bracket.Season) (Week, error) {
	if err := f.fail(); err != nil {
		return Week{}, err
	}
	return Week{Number: 15, InProgress: true}, nil
}

func (f *flakeyLeague) Teams(ctx context.Context, season bracket.Season) ([]Team, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return []Team{{ID: 1, Name: "Alpha"}}, nil
}

var testSeason = bracket.Season{LeagueID: 1, Year: 2024}

func TestRetryingRetriesAndSucceeds(t *testing.T) {
	fl := &flakeyLeague{failures: 2}
	rec := metrics.NewRecorder()
	r := NewRetrying(fl, RetryConfig{Retries: 3, InitialInterval: time.Millisecond, Metrics: rec})

	week, err := r.CurrentWeek(context.Background(), testSeason)
	require.NoError(t, err)
	assert.Equal(t, 15, week.Number)
	assert.Equal(t, 3, fl.calls)
}

func TestRetryingExhaustionIsUnavailable(t *testing.T) {
	fl := &flakeyLeague{failures: 10}
	r := NewRetrying(fl, RetryConfig{Retries: 2, InitialInterval: time.Millisecond})

	_, err := r.Scores(context.Background(), testSeason)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
	// one attempt plus two retries
	assert.Equal(t, 3, fl.calls)
}

func TestRetryingDoesNotRetryClientErrors(t *testing.T) {
	fl := &flakeyLeague{failures: 10, err: &StatusError{Provider: "espn", StatusCode: http.StatusUnauthorized}}
	r := NewRetrying(fl, RetryConfig{Retries: 3, InitialInterval: time.Millisecond})

	_, err := r.Teams(context.Background(), testSeason)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	statusErr, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, 1, fl.calls)
}

func TestRetryingRetriesServerErrors(t *testing.T) {
	fl := &flakeyLeague{failures: 1, err: &StatusError{Provider: "espn", StatusCode: http.StatusBadGateway}}
	r := NewRetrying(fl, RetryConfig{Retries: 3, InitialInterval: time.Millisecond})

	standings, err := r.Standings(context.Background(), testSeason, 14)
	require.NoError(t, err)
	assert.Len(t, standings, 1)
	assert.Equal(t, 2, fl.calls)
}

func TestRetryingSeasonNotStartedIsPermanent(t *testing.T) {
	fl := &flakeyLeague{failures: 10, err: ErrSeasonNotStarted}
	r := NewRetrying(fl, RetryConfig{Retries: 3, InitialInterval: time.Millisecond})

	_, err := r.CurrentWeek(context.Background(), testSeason)
	assert.ErrorIs(t, err, ErrSeasonNotStarted)
	assert.Equal(t, 1, fl.calls)
}

func TestRetryingRespectsContextCancel(t *testing.T) {
	fl := &flakeyLeague{failures: 10}
	r := NewRetrying(fl, RetryConfig{Retries: 3, InitialInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Scores(ctx, testSeason)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoresForWeek(t *testing.T) {
	scores := Scores{4: {101.2, 88.0}}

	points, ok := scores.ForWeek(4, 2)
	assert.True(t, ok)
	assert.Equal(t, 88.0, points)

	_, ok = scores.ForWeek(4, 3)
	assert.False(t, ok)
	_, ok = scores.ForWeek(4, 0)
	assert.False(t, ok)
	_, ok = scores.ForWeek(9, 1)
	assert.False(t, ok)
}

func TestScoresSetPadsMissingWeeks(t *testing.T) {
	scores := Scores{}
	scores.Set(4, 3, 0)
	scores.Set(4, 1, 95.5)

	points, ok := scores.ForWeek(4, 1)
	assert.True(t, ok)
	assert.Equal(t, 95.5, points)

	_, ok = scores.ForWeek(4, 2)
	assert.False(t, ok)

	// A real zero is still a score.
	points, ok = scores.ForWeek(4, 3)
	assert.True(t, ok)
	assert.Equal(t, 0.0, points)
}
