package scheduler

import (
	"context"
	"time"

	"reminder_calendar_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SweepScheduler runs the retention sweep out-of-band so the store stays
// bounded even when nobody is loading the calendar. The read path still
// sweeps on every listing; this job only covers idle periods.
type SweepScheduler struct {
	cronEngine    *cron.Cron
	service       *app.ReminderService
	logger        *logrus.Entry
	cronSpecSweep string
}

func NewSweepScheduler(service *app.ReminderService, logger *logrus.Entry, cronSpecSweep string) *SweepScheduler {
	return &SweepScheduler{
		cronEngine:    cron.New(cron.WithLocation(time.Local)), // server's local time
		service:       service,
		logger:        logger,
		cronSpecSweep: cronSpecSweep,
	}
}

func (s *SweepScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecSweep, func() {
		s.logger.Info("Cron job triggered for retention sweep")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		purged, err := s.service.SweepExpired(ctx, time.Now())
		if err != nil {
			s.logger.WithError(err).Error("Scheduled retention sweep failed")
			return
		}
		s.logger.WithField("purged", purged).Info("Scheduled retention sweep finished")
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpecSweep).Info("Sweep scheduler started")
	return nil
}

func (s *SweepScheduler) Stop() {
	s.logger.Info("Stopping sweep scheduler...")
	ctx := s.cronEngine.Stop() // waits for a running sweep to finish
	<-ctx.Done()
	s.logger.Info("Sweep scheduler gracefully stopped")
}
