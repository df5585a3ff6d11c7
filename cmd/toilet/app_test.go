package main

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brthurr/espn-toilet/internal/config"
	"github.com/brthurr/espn-toilet/internal/logging"
)

func newFixtureApp(t *testing.T) *app {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL:     "file::memory:",
		LeagueID:        1,
		SeasonEndWeek:   14,
		Provider:        config.ProviderFixture,
		FixturePath:     "../../internal/provider/fixture/testdata/league.json",
		Location:        time.UTC,
		ProviderRetries: 1,
		ProviderBackoff: time.Millisecond,
	}
	a, err := newApp(cfg, logging.NewLogger(logging.Config{Output: io.Discard}))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewAppWithFixtureProvider(t *testing.T) {
	a := newFixtureApp(t)

	week, err := a.league.CurrentWeek(context.Background(), a.cfg.Season(2023))
	require.NoError(t, err)
	assert.Equal(t, 15, week.Number)
	assert.True(t, week.InProgress)
}

func TestNewAppRejectsMissingFixture(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL: "file::memory:",
		Provider:    config.ProviderFixture,
		FixturePath: "testdata/missing.json",
		Location:    time.UTC,
	}
	_, err := newApp(cfg, logging.NewLogger(logging.Config{Output: io.Discard}))
	assert.Error(t, err)
}

func TestRouterAgainstEmptyDatabase(t *testing.T) {
	a := newFixtureApp(t)
	router := newRouter(routerDeps{
		tournaments: a.tournaments(),
		jobs:        &fakeJobs{},
		seasonFor:   a.cfg.Season,
		metrics:     a.metrics,
		logger:      a.logger,
	})

	rec := serveRequest(router, http.MethodGet, "/tournaments/2023")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serveRequest(router, http.MethodGet, "/tournaments/2023/round")
	require.Equal(t, http.StatusOK, rec.Code)
	var body roundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2023, body.Year)

	rec = serveRequest(router, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
