package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one scheduled unit of work, normally a dispatcher run.
type Job func(ctx context.Context) error

// DailyScheduler runs a Job on a cron spec in the server's local time.
// A tick that fires while the previous run is still going is skipped.
type DailyScheduler struct {
	cronEngine *cron.Cron
	job        Job
	logger     logrus.FieldLogger
	cronSpec   string
	runTimeout time.Duration
}

func NewDailyScheduler(job Job, logger logrus.FieldLogger, cronSpec string, runTimeout time.Duration) *DailyScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &DailyScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		job:        job,
		logger:     logger,
		cronSpec:   cronSpec,
		runTimeout: runTimeout,
	}
}

// Start registers the job and starts the cron engine.
func (s *DailyScheduler) Start() error {
	s.logger.Info("Starting daily scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, s.runOnce)
	if err != nil {
		return fmt.Errorf("could not add daily cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Daily scheduler started")
	return nil
}

func (s *DailyScheduler) runOnce() {
	s.logger.Info("Cron job triggered for daily quote delivery.")
	ctx := context.Background()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}
	if err := s.job(ctx); err != nil {
		s.logger.WithError(err).Error("Daily quote delivery ended with an error")
	}
}

// Stop stops the engine and waits for a running job to finish.
func (s *DailyScheduler) Stop() {
	s.logger.Info("Stopping daily scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Daily scheduler gracefully stopped.")
}
