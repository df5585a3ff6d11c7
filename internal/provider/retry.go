package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/brthurr/espn-toilet/internal/bracket"
	"github.com/brthurr/espn-toilet/internal/logging"
	"github.com/brthurr/espn-toilet/internal/metrics"
)

const (
	defaultRetries = 3
	defaultBackoff = 500 * time.Millisecond
)

// RetryConfig controls the retrying decorator. Zero values fall back to defaults.
type RetryConfig struct {
	Retries         int
	InitialInterval time.Duration
	Logger          *slog.Logger
	Metrics         *metrics.Recorder
}

// Retrying wraps a League with exponential backoff. Once retries run out the
// last error is wrapped with ErrUnavailable.
type Retrying struct {
	inner      League
	logger     *slog.Logger
	metrics    *metrics.Recorder
	newBackoff func() backoff.BackOff
}

func NewRetrying(inner League, cfg RetryConfig) *Retrying {
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	interval := cfg.InitialInterval
	if interval <= 0 {
		interval = defaultBackoff
	}
	return &Retrying{
		inner:   inner,
		logger:  logging.OrDiscard(cfg.Logger),
		metrics: cfg.Metrics,
		newBackoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = interval
			b.MaxElapsedTime = 0
			return backoff.WithMaxRetries(b, uint64(retries))
		},
	}
}

func (r *Retrying) Standings(ctx context.Context, season bracket.Season, week int) ([]Standing, error) {
	return retry(ctx, r, "standings", func(ctx context.Context) ([]Standing, error) {
		return r.inner.Standings(ctx, season, week)
	})
}

func (r *Retrying) Scores(ctx context.Context, season bracket.Season) (Scores, error) {
	return retry(ctx, r, "scores", func(ctx context.Context) (Scores, error) {
		return r.inner.Scores(ctx, season)
	})
}

func (r *Retrying) CurrentWeek(ctx context.Context, season bracket.Season) (Week, error) {
	return retry(ctx, r, "current_week", func(ctx context.Context) (Week, error) {
		return r.inner.CurrentWeek(ctx, season)
	})
}

func (r *Retrying) Teams(ctx context.Context, season bracket.Season) ([]Team, error) {
	return retry(ctx, r, "teams", func(ctx context.Context) ([]Team, error) {
		return r.inner.Teams(ctx, season)
	})
}

func retry[T any](ctx context.Context, r *Retrying, op string, call func(context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0

	err := backoff.RetryNotify(func() error {
		attempt++
		start := time.Now()
		out, err := call(ctx)
		r.metrics.RecordProviderCall(op, time.Since(start), err)
		if err == nil {
			result = out
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(r.newBackoff(), ctx), func(err error, delay time.Duration) {
		r.logger.Warn("provider call retry",
			"operation", op,
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"err", err,
		)
	})
	if err == nil {
		return result, nil
	}

	var zero T
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return zero, ctxErr
	}
	if isPermanent(err) {
		return zero, err
	}
	r.logger.Error("provider call failed", "operation", op, "attempts", attempt, "err", err)
	return zero, fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
