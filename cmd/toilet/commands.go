package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/config"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newRootCmd() *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "toilet",
		Short:         "Runs the fantasy league Toilet Bowl bracket",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.NewLogger(logging.Config{
				Level:   cfg.LogLevel,
				Format:  cfg.LogFormat,
				Service: "espn-toilet",
				Version: appVersion,
			})
			slog.SetDefault(logger)

			a, err = newApp(cfg, logger)
			if err != nil {
				logger.Error("failed to start", "error", err)
				return err
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}

	current := func() *app { return a }
	root.AddCommand(
		newServeCmd(current),
		newImportOwnersCmd(current),
		newImportScheduleCmd(current),
		newUpdateTeamsCmd(current),
		newPopulateCmd(current),
		newUpdateGameResultsCmd(current),
		newUpdateTournamentCmd(current),
		newGetTeamsCmd(current),
	)
	return root
}

func newServeCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the reconcile and advance jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().serve(cmd.Context())
		},
	}
}

func newImportOwnersCmd(current func() *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-owners",
		Short: "Import league owners from a JSON fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open owners file: %w", err)
			}
			defer f.Close()

			res, err := a.teams().ImportOwners(cmd.Context(), f)
			if err != nil {
				return err
			}
			a.logger.Info("owners imported", "created", res.Created, "skipped", res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the owners JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newImportScheduleCmd(current func() *app) *cobra.Command {
	var (
		file string
		year int
	)
	cmd := &cobra.Command{
		Use:   "import-schedule",
		Short: "Import bracket week kickoff times",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open schedule file: %w", err)
			}
			defer f.Close()

			y := yearOrDefault(a, year)
			res, err := a.schedules().ImportSchedule(cmd.Context(), y, f, a.cfg.Location)
			if err != nil {
				return err
			}
			a.logger.Info("schedule imported",
				logging.FieldYear, y,
				"created", res.Created,
				"skipped", res.Skipped,
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the schedule JSON file")
	cmd.Flags().IntVar(&year, "year", 0, "season year (defaults to the current season)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newUpdateTeamsCmd(current func() *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "update-teams",
		Short: "Sync the season's teams from the league provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			season := a.cfg.Season(yearOrDefault(a, year))
			res, err := a.teams().SyncTeams(cmd.Context(), season)
			if err != nil {
				return err
			}
			a.logger.Info("teams synced",
				logging.FieldYear, season.Year,
				"created", res.Created,
				"updated", res.Updated,
				"unchanged", res.Unchanged,
				"skipped", res.Skipped,
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "season year (defaults to the current season)")
	return cmd
}

func newPopulateCmd(current func() *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "populate-tournament",
		Short: "Seed the bracket from final standings and create its games",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			season := a.cfg.Season(yearOrDefault(a, year))
			res, err := a.tournaments().PopulateTournament(cmd.Context(), season)
			if err != nil {
				return err
			}
			a.logger.Info("tournament populated",
				logging.FieldYear, season.Year,
				"created", res.Created,
				"existing", res.Existing,
				"skipped", res.Skipped,
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "season year (defaults to the current season)")
	return cmd
}

type weekRange struct {
	year  int
	start int
	end   int
}

func (w *weekRange) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&w.year, "year", 0, "season year (defaults to the current season)")
	cmd.Flags().IntVar(&w.start, "start-week", 0, "first week to process (defaults to the first bracket week)")
	cmd.Flags().IntVar(&w.end, "end-week", 0, "last week to process (defaults to the championship week)")
}

func (w *weekRange) resolve(a *app) (bracket.Season, int, int) {
	season := a.cfg.Season(yearOrDefault(a, w.year))
	weeks := season.BracketWeeks()
	start, end := w.start, w.end
	if start == 0 {
		start = weeks[0]
	}
	if end == 0 {
		end = weeks[len(weeks)-1]
	}
	return season, start, end
}

func newUpdateGameResultsCmd(current func() *app) *cobra.Command {
	var weeks weekRange
	cmd := &cobra.Command{
		Use:   "update-game-results",
		Short: "Reconcile provider scores into bracket games",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			season, start, end := weeks.resolve(a)
			res, err := a.tournaments().UpdateGameResults(cmd.Context(), season, start, end)
			if err != nil {
				return err
			}
			a.logger.Info("game results updated",
				logging.FieldYear, season.Year,
				"weeks", res.Weeks,
				"failed", res.Failed,
				"updated", res.Updated,
				"unchanged", res.Unchanged,
			)
			return nil
		},
	}
	weeks.bind(cmd)
	return cmd
}

func newUpdateTournamentCmd(current func() *app) *cobra.Command {
	var weeks weekRange
	cmd := &cobra.Command{
		Use:   "update-tournament",
		Short: "Advance finished games into the next round",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			season, start, end := weeks.resolve(a)
			res, err := a.tournaments().UpdateTournament(cmd.Context(), season, start, end)
			if err != nil {
				return err
			}
			a.logger.Info("tournament updated",
				logging.FieldYear, season.Year,
				"weeks", res.Weeks,
				"failed", res.Failed,
				"advanced", res.Advanced,
				"skipped", res.Skipped,
			)
			return nil
		},
	}
	weeks.bind(cmd)
	return cmd
}

func newGetTeamsCmd(current func() *app) *cobra.Command {
	var (
		year    int
		byRound bool
	)
	cmd := &cobra.Command{
		Use:   "get-tb-teams",
		Short: "Print the season's bracket games as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			games, err := a.tournaments().GetTournamentData(cmd.Context(), yearOrDefault(a, year))
			if err != nil {
				return err
			}
			if byRound {
				return writeJSON(cmd.OutOrStdout(), service.GroupByRound(games))
			}
			return writeJSON(cmd.OutOrStdout(), games)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "season year (defaults to the current season)")
	cmd.Flags().BoolVar(&byRound, "by-round", false, "group games by round")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yearOrDefault(a *app, year int) int {
	if year != 0 {
		return year
	}
	return a.seasonYear()
}
