package runs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/caseflow/intake/internal/domain/run"
	"github.com/caseflow/intake/internal/storage"
	"github.com/caseflow/intake/pkg/logger"
)

// Janitor cancels runs that have sat idle past the configured window so
// abandoned sessions do not stay active forever.
type Janitor struct {
	store    storage.RunStore
	logger   *logger.Logger
	schedule string
	maxIdle  time.Duration
	cron     *cron.Cron
}

// NewJanitor creates a janitor. schedule is a standard five-field cron spec.
func NewJanitor(store storage.RunStore, log *logger.Logger, schedule string, maxIdle time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		logger:   log.WithService("run-janitor"),
		schedule: schedule,
		maxIdle:  maxIdle,
	}
}

// Start schedules the sweep. It fails only on an invalid cron spec.
func (j *Janitor) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		j.Sweep(ctx)
	}); err != nil {
		return err
	}
	c.Start()
	j.cron = c
	j.logger.WithField("schedule", j.schedule).Info("janitor started")
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Sweep cancels every active run idle past the window. Failures on individual
// runs are logged and skipped so one bad row cannot stall the sweep.
func (j *Janitor) Sweep(ctx context.Context) int {
	cutoff := time.Now().UTC().Add(-j.maxIdle)
	stale, err := j.store.ListIdleRuns(ctx, run.StatusActive, cutoff)
	if err != nil {
		j.logger.WithError(err).Error("janitor sweep failed")
		return 0
	}

	cancelled := 0
	for _, r := range stale {
		r.Status = run.StatusCancelled
		if _, err := j.store.ReplaceRun(ctx, r); err != nil {
			j.logger.WithError(err).WithField("run_id", r.ID).Warn("janitor could not cancel run")
			continue
		}
		cancelled++
	}
	if cancelled > 0 {
		j.logger.WithField("cancelled", cancelled).Info("janitor cancelled idle runs")
	}
	return cancelled
}
