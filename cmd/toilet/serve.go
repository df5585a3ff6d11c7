package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brthurr/espn-toilet/internal/scheduler"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// serve runs the HTTP API and the scheduler until ctx is cancelled, then shuts
// both down within shutdownTimeout.
func (a *app) serve(ctx context.Context) error {
	svc := a.tournaments()
	sched, err := scheduler.New(svc, scheduler.Config{
		ReconcileInterval: a.cfg.ReconcileInterval,
		AdvanceSchedule:   a.cfg.AdvanceSchedule,
		Location:          a.cfg.Location,
		SeasonFor:         a.cfg.Season,
		Logger:            a.logger,
		Metrics:           a.metrics,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: a.cfg.Addr(),
		Handler: newRouter(routerDeps{
			tournaments: svc,
			jobs:        sched,
			seasonFor:   a.cfg.Season,
			metrics:     a.metrics,
			logger:      a.logger,
		}),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sched.Start(ctx)
		<-ctx.Done()
		a.logger.Info("shutdown signal received")
		return a.shutdown(srv, sched)
	})

	return g.Wait()
}

func (a *app) shutdown(srv *http.Server, sched *scheduler.Scheduler) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		a.logger.Error("failed to stop scheduler", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", "error", err)
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}
