package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/toeicbot/internal/logger"
	"github.com/example/toeicbot/internal/progress"
	"github.com/example/toeicbot/pkg/models"
)

// Notifier sends a streak reminder to a learner
type Notifier interface {
	SendStreakReminder(ctx context.Context, learnerID int64, streakDays int) error
}

// LearnerLister lists learners with a running streak
type LearnerLister interface {
	ListWithStreak(ctx context.Context) ([]*models.LearnerProfile, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	learners  LearnerLister
	notifier  Notifier
	streak    *progress.Streak
	hour      int
	now       func() time.Time
	logger    *logger.Logger
}

// New creates a scheduler that reminds learners at hour o'clock in loc
func New(learners LearnerLister, notifier Notifier, loc *time.Location, hour int, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		learners:  learners,
		notifier:  notifier,
		streak:    progress.NewStreak(loc),
		hour:      hour,
		now:       time.Now,
		logger:    log,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(fmt.Sprintf("%02d:00", s.hour)).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		s.SendStreakReminders(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule streak reminders: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.logger.Info("Scheduler started", "reminder_hour", s.hour)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// SendStreakReminders notifies every learner whose streak ends unless they study today.
// It returns how many reminders were sent.
func (s *Scheduler) SendStreakReminders(ctx context.Context) int {
	learners, err := s.learners.ListWithStreak(ctx)
	if err != nil {
		s.logger.Error("Error getting learners for reminders", "error", err)
		return 0
	}

	now := s.now()
	sent := 0
	for _, l := range learners {
		if ctx.Err() != nil {
			break
		}
		if !s.streak.AtRisk(l, now) {
			continue
		}
		if err := s.notifier.SendStreakReminder(ctx, l.ID, l.StreakDays); err != nil {
			s.logger.Warn("Error sending streak reminder", "learner_id", l.ID, "error", err)
			continue
		}
		sent++
	}
	s.logger.Info("Streak reminders sent", "count", sent, "candidates", len(learners))
	return sent
}
