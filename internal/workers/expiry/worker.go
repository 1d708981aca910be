// Package expiry schedules the nightly subscription sweep.
package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Worker struct {
	sweeper sweeper
	logger  *slog.Logger
	cron    *cron.Cron
	spec    string
}

// NewWorker schedules the sweep with a cron spec evaluated in the given
// timezone, so "50 23 * * *" means 23:50 local channel time.
func NewWorker(sweeper sweeper, logger *slog.Logger, spec, timezone string) (*Worker, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load sweep timezone %q: %w", timezone, err)
	}

	return &Worker{
		sweeper: sweeper,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(location)),
		spec:    spec,
	}, nil
}

func (w *Worker) Name() string {
	return "expiry"
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.spec, func() {
		ctx := context.Background()
		removed, err := w.sweeper.Sweep(ctx)
		if err != nil {
			w.logger.Error("scheduled sweep failed", slog.String("error", err.Error()))
			return
		}
		w.logger.Info("scheduled sweep completed", slog.Int("removed", removed))
	})
	if err != nil {
		return fmt.Errorf("schedule sweep %q: %w", w.spec, err)
	}

	w.cron.Start()
	return nil
}

func (w *Worker) Stop() {
	// Stop only halts scheduling; a sweep already in flight finishes.
	w.cron.Stop()
}
