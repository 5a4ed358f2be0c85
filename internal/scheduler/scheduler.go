package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wordtrainer/internal/service"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const (
	// AudioCleanupEvery is how often stale pronunciation files are swept
	AudioCleanupEvery = 10 * time.Minute
	// PollSweepEvery is how often expired quizzes are dropped
	PollSweepEvery = time.Hour

	sendTimeout = 3 * time.Minute
)

// DailySender opens a daily session for a user
type DailySender interface {
	SendScheduledDaily(ctx context.Context, userID int64) error
}

// DueLister finds users waiting for today's words
type DueLister interface {
	DueForDaily(today string) ([]int64, error)
	Today() string
}

// Authorizer narrows ids down to the allow-list
type Authorizer interface {
	Filter(ids []int64) []int64
}

// Cleaner runs the periodic housekeeping
type Cleaner interface {
	CleanupOldData() error
	SweepPolls() int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sender    DailySender
	due       DueLister
	auth      Authorizer
	cleaner   Cleaner
	logger    *zap.Logger
	sendTime  string
}

// New creates a new scheduler instance. sendTime is the HH:MM of the daily send.
func New(
	loc *time.Location,
	sendTime string,
	sender DailySender,
	due DueLister,
	auth Authorizer,
	cleaner Cleaner,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		sender:    sender,
		due:       due,
		auth:      auth,
		cleaner:   cleaner,
		logger:    logger,
		sendTime:  sendTime,
	}
}

// Start registers all jobs and begins running them in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(AudioCleanupEvery).Do(s.cleanup); err != nil {
		return fmt.Errorf("schedule audio cleanup: %w", err)
	}
	if _, err := s.scheduler.Every(PollSweepEvery).Do(s.sweep); err != nil {
		return fmt.Errorf("schedule poll sweep: %w", err)
	}
	if _, err := s.scheduler.Every(1).Day().At(s.sendTime).Do(s.runDaily); err != nil {
		return fmt.Errorf("schedule daily send: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()

	s.logger.Info("Scheduler started",
		zap.String("daily_send_time", s.sendTime),
		zap.Int("jobs", len(s.scheduler.Jobs())),
	)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) cleanup() {
	if err := s.cleaner.CleanupOldData(); err != nil {
		s.logger.Error("Scheduled cleanup failed", zap.Error(err))
	}
}

func (s *Scheduler) sweep() {
	s.cleaner.SweepPolls()
}

func (s *Scheduler) runDaily() {
	s.SendDaily(context.Background())
}

// SendDaily opens today's session for every active, allowed user who has
// not trained yet. It returns how many users got their words.
func (s *Scheduler) SendDaily(ctx context.Context) int {
	due, err := s.due.DueForDaily(s.due.Today())
	if err != nil {
		s.logger.Error("Failed to list users due for daily training", zap.Error(err))
		return 0
	}

	sent := 0
	for _, userID := range s.auth.Filter(due) {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := s.sender.SendScheduledDaily(sendCtx, userID)
		cancel()

		switch {
		case err == nil:
			sent++
		case errors.Is(err, service.ErrNoContent):
			s.logger.Warn("No words for scheduled daily training", zap.Int64("user_id", userID))
		default:
			s.logger.Error("Failed to send scheduled daily training",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Scheduled daily training sent",
		zap.Int("due", len(due)),
		zap.Int("sent", sent),
	)
	return sent
}
