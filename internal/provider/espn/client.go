package espn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/singleflight"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/provider"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config controls how the client reaches the ESPN fantasy API. S2 and SWID are
// the espn_s2 and SWID cookies of an account that can see a private league.
type Config struct {
	BaseURL    string
	S2         string
	SWID       string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client reads league documents from ESPN and maps them onto provider types.
// Concurrent requests for the same league and season share one upstream call.
type Client struct {
	baseURL    string
	s2         string
	swid       string
	httpClient httpDoer
	logger     *slog.Logger
	group      singleflight.Group
}

var _ provider.League = (*Client)(nil)

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		s2:         cfg.S2,
		swid:       cfg.SWID,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		logger:     logging.OrDiscard(cfg.Logger),
	}
}

func (c *Client) Standings(ctx context.Context, season bracket.Season, week int) ([]provider.Standing, error) {
	doc, err := c.league(ctx, season)
	if err != nil {
		return nil, err
	}
	return mapStandings(doc, week), nil
}

func (c *Client) Scores(ctx context.Context, season bracket.Season) (provider.Scores, error) {
	doc, err := c.league(ctx, season)
	if err != nil {
		return nil, err
	}
	return mapScores(doc), nil
}

func (c *Client) CurrentWeek(ctx context.Context, season bracket.Season) (provider.Week, error) {
	doc, err := c.league(ctx, season)
	if err != nil {
		return provider.Week{}, err
	}
	if doc.Status.CurrentMatchupPeriod < 1 {
		return provider.Week{}, provider.ErrSeasonNotStarted
	}
	return mapWeek(doc), nil
}

func (c *Client) Teams(ctx context.Context, season bracket.Season) ([]provider.Team, error) {
	doc, err := c.league(ctx, season)
	if err != nil {
		return nil, err
	}
	return mapTeams(doc), nil
}

func (c *Client) league(ctx context.Context, season bracket.Season) (*leagueResponse, error) {
	key := fmt.Sprintf("%d/%d", season.LeagueID, season.Year)
	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, season)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("espn league fetch shared", logging.FieldYear, season.Year)
	}
	return v.(*leagueResponse), nil
}

func (c *Client) fetch(ctx context.Context, season bracket.Season) (*leagueResponse, error) {
	req, err := c.buildRequest(ctx, season)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("espn: league %d/%d: %w", season.LeagueID, season.Year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &provider.StatusError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var doc leagueResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("espn: decode league %d/%d: %w", season.LeagueID, season.Year, err)
	}

	c.logger.Debug("espn league fetched",
		logging.FieldYear, season.Year,
		"teams", len(doc.Teams),
		"matchups", len(doc.Schedule),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return &doc, nil
}

func (c *Client) buildRequest(ctx context.Context, season bracket.Season) (*http.Request, error) {
	url := fmt.Sprintf("%s/seasons/%d/segments/0/leagues/%d", c.baseURL, season.Year, season.LeagueID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for _, view := range []string{"mTeam", "mMatchupScore", "mSettings"} {
		q.Add("view", view)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	if c.s2 != "" {
		req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.s2})
	}
	if c.swid != "" {
		req.AddCookie(&http.Cookie{Name: "SWID", Value: c.swid})
	}
	return req, nil
}
