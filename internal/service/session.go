package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"wordtrainer/internal/content"
	"wordtrainer/internal/domain"
	"wordtrainer/internal/quiz"
	"wordtrainer/internal/repository"

	"go.uber.org/zap"
)

const (
	// MaxQuizDistractors is the number of wrong options offered next to the correct one
	MaxQuizDistractors = 3
	// MinQuizOptions is the smallest quiz worth sending
	MinQuizOptions = 2
	// DefaultDailyCount is the length of a daily word list
	DefaultDailyCount = 20
	// DefaultRetryLimit is how many mistakes a retry session covers
	DefaultRetryLimit = 3
	// ReviewSize is how many learned words a review session covers
	ReviewSize = 10
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrEmptyWordList   = errors.New("word list is empty")
	ErrUnknownSession  = errors.New("unknown session type")
	ErrNothingToRetry  = errors.New("nothing to retry")
	ErrNothingLearned  = errors.New("nothing learned yet")
	ErrNoContent       = errors.New("no content available")
)

// ContentProvider supplies words and translations
type ContentProvider interface {
	DailyWords(ctx context.Context, history content.History, count int) ([]domain.WordEntry, error)
	Translate(ctx context.Context, word string) string
}

// Deliverer renders session output to the user
type Deliverer interface {
	DeliverWord(ctx context.Context, userID int64, entry domain.WordEntry) error
	DeliverQuiz(ctx context.Context, userID int64, q domain.Quiz) (string, error)
}

// Step is the outcome of one Advance call
type Step struct {
	Word        *domain.WordEntry
	Quiz        *domain.Quiz
	QuizID      string
	Completed   bool
	SessionType domain.SessionType
	Position    int
	Total       int
}

// Bonus reports whether the completion earns the daily summary
func (s Step) Bonus() bool {
	return s.Completed && s.SessionType == domain.SessionDaily
}

// AnswerResult describes how a quiz answer was applied
type AnswerResult struct {
	Applied bool
	Correct bool
	UserID  int64
	Word    string
}

// SessionService drives users through their practice sessions
type SessionService struct {
	store   repository.UserStore
	content ContentProvider
	polls   *quiz.PollTable
	logger  *zap.Logger

	// mu guards every load-mutate-save cycle on the store and rng
	mu  sync.Mutex
	rng *rand.Rand

	locksMu   sync.Mutex
	userLocks map[int64]*sync.Mutex

	now        func() time.Time
	dailyCount int
	retryLimit int
}

// NewSessionService creates a new session service
func NewSessionService(
	store repository.UserStore,
	provider ContentProvider,
	polls *quiz.PollTable,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		store:      store,
		content:    provider,
		polls:      polls,
		logger:     logger,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		userLocks:  make(map[int64]*sync.Mutex),
		now:        time.Now,
		dailyCount: DefaultDailyCount,
		retryLimit: DefaultRetryLimit,
	}
}

// SetDailyCount sets the daily list length
func (s *SessionService) SetDailyCount(n int) {
	if n > 0 {
		s.dailyCount = n
	}
}

// SetRetryLimit sets how many mistakes a retry session takes, 0 meaning all
func (s *SessionService) SetRetryLimit(n int) {
	if n >= 0 {
		s.retryLimit = n
	}
}

// userLock serializes session flows of a single user
func (s *SessionService) userLock(userID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// view runs fn on a freshly loaded document without saving it
func (s *SessionService) view(fn func(users domain.Users) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	return fn(users)
}

// update runs fn on the user's record and saves the whole document if fn succeeds
func (s *SessionService) update(userID int64, fn func(u *domain.UserRecord, users domain.Users) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	if err := fn(users.GetOrCreate(userID), users); err != nil {
		return err
	}

	if err := s.store.Save(users); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

// GetUser returns a copy of the user's record, with defaults for unknown users
func (s *SessionService) GetUser(userID int64) (domain.UserRecord, error) {
	var out domain.UserRecord
	err := s.view(func(users domain.Users) error {
		out = *users.GetOrCreate(userID)
		return nil
	})
	return out, err
}

// StartSession replaces any previous session of the user with a new one over wordList
func (s *SessionService) StartSession(userID int64, sessionType domain.SessionType, wordList []domain.WordEntry) error {
	if len(wordList) == 0 {
		return ErrEmptyWordList
	}
	switch sessionType {
	case domain.SessionDaily, domain.SessionRetry, domain.SessionReview:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSession, sessionType)
	}

	list := make([]domain.WordEntry, len(wordList))
	copy(list, wordList)

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	err := s.update(userID, func(u *domain.UserRecord, _ domain.Users) error {
		u.Session = &domain.UserSession{WordList: list, CurrentIndex: 0}
		u.SessionType = sessionType

		if sessionType == domain.SessionDaily {
			today := domain.DateKey(s.now())
			u.MarkTrainingDay(today)
			u.CurrentDay = domain.DayLabel{Date: today}
			u.Active = true
			u.LastTrainedAt = &today
			for _, w := range list {
				u.WordsLearned = append(u.WordsLearned, w.Word)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Session started",
		zap.Int64("user_id", userID),
		zap.String("session_type", string(sessionType)),
		zap.Int("words", len(list)),
	)
	return nil
}

// Advance delivers the next word of the user's session, or completes the
// session when every word has been delivered. Completion clears the session,
// so a further call returns ErrNoActiveSession.
func (s *SessionService) Advance(ctx context.Context, userID int64, d Deliverer) (Step, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var step Step
	var entry domain.WordEntry
	var q *domain.Quiz
	var index int

	err := s.update(userID, func(u *domain.UserRecord, users domain.Users) error {
		if u.Session == nil {
			return ErrNoActiveSession
		}

		total := len(u.Session.WordList)
		if u.Session.Complete() {
			step = Step{Completed: true, SessionType: u.SessionType, Position: total, Total: total}
			u.ClearSession()
			return nil
		}

		index = u.Session.CurrentIndex
		entry = u.Session.WordList[index]
		step = Step{SessionType: u.SessionType, Position: index + 1, Total: total}
		if entry.HasQuiz {
			q = s.buildQuiz(entry, users)
		}
		// nothing changed yet, the save below is skipped
		return errNoChange
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return Step{}, err
	}

	if step.Completed {
		s.logger.Info("Session completed",
			zap.Int64("user_id", userID),
			zap.String("session_type", string(step.SessionType)),
		)
		return step, nil
	}

	if err := d.DeliverWord(ctx, userID, entry); err != nil {
		return Step{}, fmt.Errorf("failed to deliver word: %w", err)
	}
	step.Word = &entry

	if q != nil {
		quizID, err := d.DeliverQuiz(ctx, userID, *q)
		if err != nil {
			s.logger.Warn("Failed to deliver quiz",
				zap.Int64("user_id", userID),
				zap.String("word", entry.Word),
				zap.Error(err),
			)
		} else {
			s.polls.Register(quizID, entry.Word, userID, q.Options)
			step.Quiz = q
			step.QuizID = quizID
		}
	}

	err = s.update(userID, func(u *domain.UserRecord, _ domain.Users) error {
		if u.Session == nil || u.Session.CurrentIndex != index {
			return ErrNoActiveSession
		}
		u.Session.CurrentIndex++
		return nil
	})
	if err != nil {
		return Step{}, err
	}

	return step, nil
}

var errNoChange = errors.New("no change")

// buildQuiz draws distractors from every user's learned words. It returns nil
// when fewer than MinQuizOptions options could be assembled. Callers hold s.mu.
func (s *SessionService) buildQuiz(entry domain.WordEntry, users domain.Users) *domain.Quiz {
	pool := users.LearnedPool(entry.Word)
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > MaxQuizDistractors {
		pool = pool[:MaxQuizDistractors]
	}

	options := append([]string{entry.Word}, pool...)
	if len(options) < MinQuizOptions {
		return nil
	}
	s.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	correct := 0
	for i, o := range options {
		if o == entry.Word {
			correct = i
			break
		}
	}

	return &domain.Quiz{
		Word:         entry.Word,
		Prompt:       entry.Translation,
		Options:      options,
		CorrectIndex: correct,
	}
}

// ApplyQuizAnswer scores an answer to a dispatched quiz. Unknown, late and
// repeated answers are ignored.
func (s *SessionService) ApplyQuizAnswer(quizID string, selected int) (AnswerResult, error) {
	pending, ok := s.polls.Take(quizID)
	if !ok {
		return AnswerResult{}, nil
	}

	res := AnswerResult{
		Applied: true,
		Correct: selected == pending.CorrectIndex(),
		UserID:  pending.UserID,
		Word:    pending.CorrectWord,
	}

	err := s.update(pending.UserID, func(u *domain.UserRecord, _ domain.Users) error {
		if res.Correct {
			u.Stats.Correct++
			u.RemoveMistake(pending.CorrectWord)
		} else {
			u.Stats.Incorrect++
			u.AddMistake(pending.CorrectWord)
		}
		return nil
	})
	if err != nil {
		return AnswerResult{}, err
	}

	return res, nil
}

// StopSession disables scheduled sends for the user. Any in-progress session is kept.
func (s *SessionService) StopSession(userID int64) error {
	return s.update(userID, func(u *domain.UserRecord, _ domain.Users) error {
		u.Active = false
		return nil
	})
}
