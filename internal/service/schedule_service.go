package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/store"
)

type ScheduleService struct {
	store  *store.ScheduleStore
	logger *slog.Logger
}

func NewScheduleService(store *store.ScheduleStore, logger *slog.Logger) *ScheduleService {
	return &ScheduleService{store: store, logger: logging.OrDiscard(logger)}
}

type scheduleRecord struct {
	Week      int       `json:"week"`
	EarlyGame time.Time `json:"early_game"`
	LateGame  time.Time `json:"late_game"`
}

// ImportSchedule stores kickoff windows for year. Week start is computed in
// loc so the Tuesday boundary follows league local time.
func (s *ScheduleService) ImportSchedule(ctx context.Context, year int, r io.Reader, loc *time.Location) (ImportResult, error) {
	var result ImportResult
	if loc == nil {
		loc = time.UTC
	}

	var records []scheduleRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return result, fmt.Errorf("failed to decode schedule: %w", err)
	}

	for _, rec := range records {
		if rec.Week < 1 || rec.EarlyGame.IsZero() {
			s.logger.Warn("skipping malformed schedule entry", logging.FieldYear, year, logging.FieldWeek, rec.Week)
			result.Skipped++
			continue
		}

		_, found, err := s.store.GetSchedule(ctx, year, rec.Week)
		if err != nil {
			return result, err
		}
		if found {
			s.logger.Info("schedule already exists", logging.FieldYear, year, logging.FieldWeek, rec.Week)
			result.Skipped++
			continue
		}

		late := rec.LateGame
		if late.IsZero() {
			late = rec.EarlyGame
		}
		schedule := &bracket.Schedule{
			Year:        year,
			Week:        rec.Week,
			EarlyGameAt: rec.EarlyGame.UTC(),
			LateGameAt:  late.UTC(),
			WeekStart:   bracket.PreviousTuesday(rec.EarlyGame.In(loc)).UTC(),
		}
		if err := s.store.CreateSchedule(ctx, schedule); err != nil {
			return result, fmt.Errorf("failed to create week %d schedule: %w", rec.Week, err)
		}
		result.Created++
	}
	return result, nil
}
