package testutil

import (
	"encoding/json"
	"sync"

	"wordtrainer/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// MemoryUserStore keeps the users document in memory. Load and Save copy
// through JSON so callers never share records with the store.
type MemoryUserStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryUserStore creates a store seeded with users
func NewMemoryUserStore(users domain.Users) *MemoryUserStore {
	s := &MemoryUserStore{}
	if users == nil {
		users = domain.Users{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		panic(err)
	}
	s.data = data
	return s
}

func (s *MemoryUserStore) Load() (domain.Users, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := domain.Users{}
	if err := json.Unmarshal(s.data, &users); err != nil {
		return nil, err
	}
	users.Normalize()
	return users, nil
}

func (s *MemoryUserStore) Save(users domain.Users) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Saves returns how many times Save was called
func (s *MemoryUserStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// User returns a copy of one stored record, or nil
func (s *MemoryUserStore) User(userID int64) *domain.UserRecord {
	users, err := s.Load()
	if err != nil {
		return nil
	}
	return users[userID]
}

// NewTestEntry creates a word entry
func NewTestEntry(word, translation string, hasQuiz bool) domain.WordEntry {
	return domain.WordEntry{
		Word:        word,
		Translation: translation,
		Example:     "Example for " + word,
		HasQuiz:     hasQuiz,
	}
}

// FakeContext is a telebot context carrying just what handlers read.
// Calling any method it does not override panics.
type FakeContext struct {
	tele.Context

	User     *tele.User
	Cb       *tele.Callback
	PollAns  *tele.PollAnswer
	Sent     []interface{}
	Edited   []interface{}
	EditErr  error
	Responds int
}

var _ tele.Context = (*FakeContext)(nil)

func (f *FakeContext) Sender() *tele.User           { return f.User }
func (f *FakeContext) Callback() *tele.Callback     { return f.Cb }
func (f *FakeContext) PollAnswer() *tele.PollAnswer { return f.PollAns }
func (f *FakeContext) Respond(_ ...*tele.CallbackResponse) error {
	f.Responds++
	return nil
}

func (f *FakeContext) Send(what interface{}, _ ...interface{}) error {
	f.Sent = append(f.Sent, what)
	return nil
}

func (f *FakeContext) Edit(what interface{}, _ ...interface{}) error {
	if f.EditErr != nil {
		return f.EditErr
	}
	f.Edited = append(f.Edited, what)
	return nil
}
