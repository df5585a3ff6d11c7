package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/metrics"
	"github.com/brthurr/espn-toilet/internal/service"
)

const (
	JobReconcile = "reconcile"
	JobAdvance   = "advance"

	defaultInterval   = 5 * time.Minute
	defaultSchedule   = "0 3 * * TUE"
	defaultJobTimeout = 5 * time.Minute
)

// Bracket is the work the scheduler drives. *service.TournamentService
// satisfies it.
type Bracket interface {
	ActiveWeeks(ctx context.Context, season bracket.Season) ([]int, error)
	UpdateGameResults(ctx context.Context, season bracket.Season, startWeek, endWeek int) (service.BatchResult, error)
	UpdateTournament(ctx context.Context, season bracket.Season, startWeek, endWeek int) (service.BatchResult, error)
	Refresh(ctx context.Context, season bracket.Season) (service.BatchResult, error)
}

type Config struct {
	ReconcileInterval time.Duration
	AdvanceSchedule   string
	Location          *time.Location
	JobTimeout        time.Duration
	// SeasonFor turns a season year into the value passed to the bracket.
	SeasonFor func(year int) bracket.Season
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

// Status describes the recent health of one job.
type Status struct {
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
	LastAttempt         time.Time `json:"last_attempt"`
	LastSuccess         time.Time `json:"last_success"`
}

// Scheduler runs score reconciliation on an interval and round advancement on a
// cron schedule for the current season.
type Scheduler struct {
	bracket   Bracket
	cron      *cron.Cron
	locker    *YearLocker
	seasonFor func(int) bracket.Season
	loc       *time.Location
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Recorder
	now       func() time.Time

	baseMu sync.Mutex
	base   context.Context

	statusMu sync.RWMutex
	status   map[string]Status
}

func New(b Bracket, cfg Config) (*Scheduler, error) {
	interval := cfg.ReconcileInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	spec := cfg.AdvanceSchedule
	if spec == "" {
		spec = defaultSchedule
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	seasonFor := cfg.SeasonFor
	if seasonFor == nil {
		seasonFor = func(year int) bracket.Season { return bracket.Season{Year: year} }
	}
	logger := logging.OrDiscard(cfg.Logger)

	s := &Scheduler{
		bracket:   b,
		locker:    NewYearLocker(),
		seasonFor: seasonFor,
		loc:       loc,
		timeout:   timeout,
		logger:    logger,
		metrics:   cfg.Metrics,
		now:       time.Now,
		base:      context.Background(),
		status:    make(map[string]Status),
	}

	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
	)
	if _, err := s.cron.AddFunc("@every "+interval.String(), func() { s.runJob(JobReconcile) }); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval %s: %w", interval, err)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.runJob(JobAdvance) }); err != nil {
		return nil, fmt.Errorf("invalid advance schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the cron loop and runs one reconcile immediately. Jobs stop
// being scheduled when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.baseMu.Lock()
	s.base = ctx
	s.baseMu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
	go s.runJob(JobReconcile)

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
}

// Stop halts scheduling and waits for running jobs or ctx, whichever is first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh reconciles and advances every bracket week of year, serialized with
// the scheduled jobs for the same year.
func (s *Scheduler) Refresh(ctx context.Context, year int) (service.BatchResult, error) {
	unlock := s.locker.Lock(year)
	defer unlock()
	return s.bracket.Refresh(ctx, s.seasonFor(year))
}

// RunJob runs a named job now for the current season.
func (s *Scheduler) RunJob(ctx context.Context, job string) error {
	season := s.seasonFor(bracket.SeasonYear(s.now().In(s.loc)))
	unlock := s.locker.Lock(season.Year)
	defer unlock()

	start := time.Now()
	s.recordAttempt(job, start)

	err := s.run(ctx, job, season)
	s.metrics.RecordJob(job, time.Since(start), err)
	if err != nil {
		s.recordFailure(job, err, start)
		return err
	}
	s.recordSuccess(job, start)
	return nil
}

func (s *Scheduler) run(ctx context.Context, job string, season bracket.Season) error {
	log := s.logger.With(logging.FieldJob, job, logging.FieldYear, season.Year)

	var (
		result service.BatchResult
		err    error
	)
	switch job {
	case JobReconcile:
		weeks, werr := s.bracket.ActiveWeeks(ctx, season)
		if werr != nil {
			return fmt.Errorf("failed to resolve active weeks: %w", werr)
		}
		if len(weeks) == 0 {
			return nil
		}
		result, err = s.bracket.UpdateGameResults(ctx, season, weeks[0], weeks[len(weeks)-1])
	case JobAdvance:
		weeks := season.BracketWeeks()
		result, err = s.bracket.UpdateTournament(ctx, season, weeks[0], weeks[len(weeks)-1])
	default:
		return fmt.Errorf("unknown job %q", job)
	}
	if err != nil {
		return err
	}

	log.Info("job finished",
		"weeks", result.Weeks,
		"failed_weeks", result.Failed,
		"updated", result.Updated,
		"advanced", result.Advanced,
	)
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d weeks failed", len(result.Failed), len(result.Weeks))
	}
	return nil
}

func (s *Scheduler) runJob(job string) {
	s.baseMu.Lock()
	base := s.base
	s.baseMu.Unlock()
	if base.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(base, s.timeout)
	defer cancel()
	if err := s.RunJob(ctx, job); err != nil {
		s.logger.Error("scheduled job failed", logging.FieldJob, job, "err", err)
	}
}

// Status returns a snapshot of every job's recent health.
func (s *Scheduler) Status() map[string]Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	out := make(map[string]Status, len(s.status))
	for k, v := range s.status {
		out[k] = v
	}
	return out
}

func (s *Scheduler) recordAttempt(job string, at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	st := s.status[job]
	st.LastAttempt = at
	s.status[job] = st
}

func (s *Scheduler) recordSuccess(job string, at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	st := s.status[job]
	st.ConsecutiveFailures = 0
	st.LastError = ""
	st.LastSuccess = at
	s.status[job] = st
}

func (s *Scheduler) recordFailure(job string, err error, at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	st := s.status[job]
	st.ConsecutiveFailures++
	st.LastError = err.Error()
	st.LastAttempt = at
	s.status[job] = st
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
