package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/httputil"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/metrics"
	"github.com/brthurr/espn-toilet/internal/middleware"
	"github.com/brthurr/espn-toilet/internal/provider"
	"github.com/brthurr/espn-toilet/internal/scheduler"
	"github.com/brthurr/espn-toilet/internal/service"
)

type tournamentReader interface {
	GetTournamentData(ctx context.Context, year int) ([]service.GameView, error)
	CurrentRound(ctx context.Context, season bracket.Season) (int, error)
}

type refresher interface {
	Refresh(ctx context.Context, year int) (service.BatchResult, error)
	Status() map[string]scheduler.Status
}

type routerDeps struct {
	tournaments tournamentReader
	jobs        refresher
	seasonFor   func(year int) bracket.Season
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

type healthResponse struct {
	Status string                      `json:"status"`
	Jobs   map[string]scheduler.Status `json:"jobs"`
}

type roundResponse struct {
	Year  int `json:"year"`
	Round int `json:"round"`
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(deps.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RecordRequests(deps.metrics))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, healthResponse{Status: "ok", Jobs: deps.jobs.Status()})
	})

	r.Handle("/metrics", deps.metrics.Handler())

	r.Route("/tournaments/{year}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			year, ok := yearParam(w, r)
			if !ok {
				return
			}
			games, err := deps.tournaments.GetTournamentData(r.Context(), year)
			if err != nil {
				httputil.InternalServerError(w, "Failed to get tournament", err)
				return
			}
			if len(games) == 0 {
				httputil.NotFound(w, "Tournament not found", nil)
				return
			}
			httputil.JSON(w, http.StatusOK, games)
		})

		r.Get("/rounds", func(w http.ResponseWriter, r *http.Request) {
			year, ok := yearParam(w, r)
			if !ok {
				return
			}
			games, err := deps.tournaments.GetTournamentData(r.Context(), year)
			if err != nil {
				httputil.InternalServerError(w, "Failed to get tournament", err)
				return
			}
			if len(games) == 0 {
				httputil.NotFound(w, "Tournament not found", nil)
				return
			}
			httputil.JSON(w, http.StatusOK, service.GroupByRound(games))
		})

		r.Get("/round", func(w http.ResponseWriter, r *http.Request) {
			year, ok := yearParam(w, r)
			if !ok {
				return
			}
			round, err := deps.tournaments.CurrentRound(r.Context(), deps.seasonFor(year))
			if err != nil {
				httputil.InternalServerError(w, "Failed to get current round", err)
				return
			}
			httputil.JSON(w, http.StatusOK, roundResponse{Year: year, Round: round})
		})

		r.Post("/refresh", func(w http.ResponseWriter, r *http.Request) {
			year, ok := yearParam(w, r)
			if !ok {
				return
			}
			result, err := deps.jobs.Refresh(r.Context(), year)
			if err != nil {
				if errors.Is(err, provider.ErrUnavailable) {
					httputil.ServiceUnavailable(w, "League provider unavailable", err)
					return
				}
				httputil.InternalServerError(w, "Failed to refresh tournament", err)
				return
			}
			middleware.LoggerFromContext(r.Context()).Info("tournament refreshed",
				logging.FieldYear, year,
				"failed", result.Failed,
				"updated", result.Updated,
				"advanced", result.Advanced,
			)
			httputil.JSON(w, http.StatusOK, result)
		})
	})

	return r
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		httputil.BadRequest(w, "Invalid year", err)
		return 0, false
	}
	return year, true
}
