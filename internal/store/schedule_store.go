package store

import (
	"context"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ScheduleStore struct {
	db *sqlx.DB
}

func NewScheduleStore(db *sqlx.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

func (s *ScheduleStore) GetSchedule(ctx context.Context, year, week int) (*bracket.Schedule, bool, error) {
	var schedule bracket.Schedule
	found, err := getOptional(ctx, s.db, &schedule, s.db.Rebind("SELECT * FROM schedules WHERE year = ? AND week = ?"), year, week)
	if err != nil || !found {
		return nil, found, err
	}
	return &schedule, true, nil
}

func (s *ScheduleStore) GetSchedules(ctx context.Context, year int) ([]bracket.Schedule, error) {
	var schedules []bracket.Schedule
	err := s.db.SelectContext(ctx, &schedules, s.db.Rebind("SELECT * FROM schedules WHERE year = ? ORDER BY week ASC"), year)
	return schedules, err
}

func (s *ScheduleStore) CreateSchedule(ctx context.Context, schedule *bracket.Schedule) error {
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO schedules (id, year, week, early_game_at, late_game_at, week_start)
		VALUES (:id, :year, :week, :early_game_at, :late_game_at, :week_start)`, schedule)
	return err
}
