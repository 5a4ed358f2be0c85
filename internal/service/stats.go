package service

import (
	"fmt"
	"time"

	"wordtrainer/internal/domain"
	"wordtrainer/internal/quiz"
	"wordtrainer/internal/repository"

	"go.uber.org/zap"
)

const (
	// AudioMaxAge is how long a cached pronunciation may stay on disk
	AudioMaxAge = 10 * time.Minute
	// PollMaxAge is how long an unanswered quiz stays correlatable
	PollMaxAge = 24 * time.Hour
)

// AudioCleaner removes cached audio files
type AudioCleaner interface {
	CleanupStale(maxAge time.Duration) int
}

// UserStats is the progress summary shown to a user
type UserStats struct {
	Correct      int
	Incorrect    int
	SuccessRate  string
	TrainingDays int
	WordsLearned int
	Mistakes     int
	CurrentDay   domain.DayLabel
}

// StatsService handles statistics and cleanup
type StatsService struct {
	store  repository.UserStore
	audio  AudioCleaner
	polls  *quiz.PollTable
	logger *zap.Logger

	audioMaxAge time.Duration
}

// NewStatsService creates a new stats service
func NewStatsService(store repository.UserStore, audio AudioCleaner, polls *quiz.PollTable, logger *zap.Logger) *StatsService {
	return &StatsService{
		store:       store,
		audio:       audio,
		polls:       polls,
		logger:      logger,
		audioMaxAge: AudioMaxAge,
	}
}

// SetAudioMaxAge overrides the audio retention
func (s *StatsService) SetAudioMaxAge(d time.Duration) {
	if d > 0 {
		s.audioMaxAge = d
	}
}

// ComputeStats summarizes the user's quiz results
func (s *StatsService) ComputeStats(userID int64) (UserStats, error) {
	users, err := s.store.Load()
	if err != nil {
		return UserStats{}, fmt.Errorf("failed to load users: %w", err)
	}

	u, ok := users[userID]
	if !ok || u == nil {
		u = domain.NewUserRecord()
	}

	return UserStats{
		Correct:      u.Stats.Correct,
		Incorrect:    u.Stats.Incorrect,
		SuccessRate:  SuccessRate(u.Stats.Correct, u.Stats.Incorrect),
		TrainingDays: len(u.TrainingDays),
		WordsLearned: len(u.WordsLearned),
		Mistakes:     len(u.Mistakes),
		CurrentDay:   u.CurrentDay,
	}, nil
}

// SuccessRate formats correct/(correct+incorrect) as a percentage with one decimal
func SuccessRate(correct, incorrect int) string {
	total := correct + incorrect
	if total <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(correct)*100/float64(total))
}

// CleanupOldData removes stale audio files
func (s *StatsService) CleanupOldData() error {
	s.logger.Info("Starting cleanup of old audio", zap.Duration("max_age", s.audioMaxAge))

	removed := s.audio.CleanupStale(s.audioMaxAge)

	s.logger.Info("Cleanup completed successfully", zap.Int("removed", removed))
	return nil
}

// SweepPolls drops quizzes nobody answered in time
func (s *StatsService) SweepPolls() int {
	removed := s.polls.Sweep(PollMaxAge)
	if removed > 0 {
		s.logger.Info("Expired pending quizzes", zap.Int("removed", removed))
	}
	return removed
}
