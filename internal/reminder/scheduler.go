package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/achla24/LeaveEase/internal/leave"
	"github.com/achla24/LeaveEase/internal/metrics"
	"github.com/achla24/LeaveEase/internal/notification"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 5 * time.Minute

// LeaveFinder lists leave requests by start date.
type LeaveFinder interface {
	FindStartingBetween(ctx context.Context, from, to time.Time, status string) ([]leave.LeaveRequest, error)
}

// Reminder sends one upcoming-leave reminder.
type Reminder interface {
	Remind(ctx context.Context, l notification.LeaveSnapshot) notification.Outcome
}

// Scheduler reminds employees of approved leave that starts within the
// next LeadDays days.
type Scheduler struct {
	cronEngine *cron.Cron
	cronSpec   string
	leadDays   int
	leaves     LeaveFinder
	reminder   Reminder
	now        func() time.Time
	logger     *zap.Logger
}

func NewScheduler(cronSpec string, leadDays int, leaves LeaveFinder, reminder Reminder, logger ...*zap.Logger) *Scheduler {
	l := zap.L().Named("reminder.scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reminder.scheduler")
	}
	if leadDays < 1 {
		leadDays = 1
	}
	return &Scheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		cronSpec:   cronSpec,
		leadDays:   leadDays,
		leaves:     leaves,
		reminder:   reminder,
		now:        time.Now,
		logger:     l,
	}
}

// WithClock replaces the time source used to compute the reminder window.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("reminder run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add reminder job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.Info("reminder scheduler started",
		zap.String("cron", s.cronSpec),
		zap.Int("lead_days", s.leadDays),
	)
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("reminder scheduler stopped")
}

// RunOnce reminds every approved leave starting in [today+1, today+leadDays]
// and returns how many reminders were dispatched.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, 1)
	to := today.AddDate(0, 0, s.leadDays)

	upcoming, err := s.leaves.FindStartingBetween(ctx, from, to, leave.StatusApproved)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, l := range upcoming {
		out := s.reminder.Remind(ctx, l.Snapshot())
		if out.WebhookDelivered || out.EmailSent {
			sent++
		}
	}

	metrics.ObserveReminders(sent)
	s.logger.Info("reminder run finished",
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", to.Format("2006-01-02")),
		zap.Int("upcoming", len(upcoming)),
		zap.Int("sent", sent),
	)
	return sent, nil
}
