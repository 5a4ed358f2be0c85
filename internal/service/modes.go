package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"wordtrainer/internal/content"
	"wordtrainer/internal/domain"

	"go.uber.org/zap"
)

// StartDaily fetches today's words and starts a daily session over them.
// The user's state is untouched when no words could be produced.
func (s *SessionService) StartDaily(ctx context.Context, userID int64) ([]domain.WordEntry, error) {
	var history content.History
	err := s.view(func(users domain.Users) error {
		u := users.GetOrCreate(userID)
		history = content.History{
			Mistakes:     append([]string(nil), u.Mistakes...),
			WordsLearned: append([]string(nil), u.WordsLearned...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	words, err := s.content.DailyWords(ctx, history, s.dailyCount)
	if err != nil {
		s.logger.Error("Failed to get daily words",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	if len(words) == 0 {
		return nil, ErrNoContent
	}

	if err := s.StartSession(userID, domain.SessionDaily, words); err != nil {
		return nil, err
	}
	return words, nil
}

// BuildRetrySession starts a retry session over the user's oldest mistakes
func (s *SessionService) BuildRetrySession(ctx context.Context, userID int64) ([]domain.WordEntry, error) {
	var mistakes []string
	err := s.view(func(users domain.Users) error {
		mistakes = append([]string(nil), users.GetOrCreate(userID).Mistakes...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(mistakes) == 0 {
		return nil, ErrNothingToRetry
	}
	if s.retryLimit > 0 && len(mistakes) > s.retryLimit {
		mistakes = mistakes[:s.retryLimit]
	}

	entries := make([]domain.WordEntry, len(mistakes))
	var wg sync.WaitGroup
	for i, w := range mistakes {
		wg.Add(1)
		go func(i int, w string) {
			defer wg.Done()
			entries[i] = domain.WordEntry{
				Word:        w,
				Translation: s.content.Translate(ctx, w),
				Example:     fmt.Sprintf("Try to remember the word %s.", w),
				HasQuiz:     true,
			}
		}(i, w)
	}
	wg.Wait()

	if err := s.StartSession(userID, domain.SessionRetry, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// BuildReviewSession starts a review session over a random sample of learned words
func (s *SessionService) BuildReviewSession(ctx context.Context, userID int64) ([]domain.WordEntry, error) {
	var sample []string
	err := s.view(func(users domain.Users) error {
		u := users.GetOrCreate(userID)

		seen := make(map[string]struct{}, len(u.WordsLearned))
		for _, w := range u.WordsLearned {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			sample = append(sample, w)
		}

		s.rng.Shuffle(len(sample), func(i, j int) { sample[i], sample[j] = sample[j], sample[i] })
		if len(sample) > ReviewSize {
			sample = sample[:ReviewSize]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(sample) == 0 {
		return nil, ErrNothingLearned
	}

	entries := make([]domain.WordEntry, len(sample))
	var wg sync.WaitGroup
	for i, w := range sample {
		wg.Add(1)
		go func(i int, w string) {
			defer wg.Done()
			entries[i] = domain.WordEntry{
				Word:        w,
				Translation: s.content.Translate(ctx, w),
				Example:     fmt.Sprintf("Reminder: use the word %s in context.", w),
				HasQuiz:     false,
			}
		}(i, w)
	}
	wg.Wait()

	if err := s.StartSession(userID, domain.SessionReview, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DueForDaily returns the active users that have not started a daily session on today
func (s *SessionService) DueForDaily(today string) ([]int64, error) {
	var due []int64
	err := s.view(func(users domain.Users) error {
		for id, u := range users {
			if u == nil || !u.Active || u.TrainedOn(today) {
				continue
			}
			due = append(due, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	return due, nil
}

// Today returns the current date key in the service clock
func (s *SessionService) Today() string {
	return domain.DateKey(s.now())
}
