package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/semesterdesk/core/internal/application/services"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
)

// Scheduler runs periodic jobs in-process. Deployments that trigger
// the digest over HTTP from an external cron simply never schedule it
// here.
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger
}

// New creates a new scheduler
func New(appLogger *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: appLogger,
	}
}

// ScheduleDigest registers the weekly digest on a cron spec like
// "0 7 * * MON".
func (s *Scheduler) ScheduleDigest(spec string, digest *services.DigestService) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		summary, err := digest.Build(ctx)
		if err != nil {
			s.logger.Errorw("Scheduled digest failed", "error", err)
			return
		}
		s.logger.Infow("Scheduled digest complete",
			"assignments", summary.AssignmentsCount,
			"study_minutes", summary.StudyMinutes,
		)
	})
	if err != nil {
		return err
	}
	s.logger.Infow("Digest scheduled", "spec", spec)
	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
