package testutil

import (
	"context"
	"time"

	"wordtrainer/internal/content"
	"wordtrainer/internal/domain"

	"github.com/stretchr/testify/mock"
	tele "gopkg.in/telebot.v3"
)

// MockUserStore is a mock for UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Load() (domain.Users, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Users), args.Error(1)
}

func (m *MockUserStore) Save(users domain.Users) error {
	args := m.Called(users)
	return args.Error(0)
}

// MockContentProvider is a mock for ContentProvider
type MockContentProvider struct {
	mock.Mock
}

func (m *MockContentProvider) DailyWords(ctx context.Context, history content.History, count int) ([]domain.WordEntry, error) {
	args := m.Called(ctx, history, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WordEntry), args.Error(1)
}

func (m *MockContentProvider) Translate(ctx context.Context, word string) string {
	args := m.Called(ctx, word)
	return args.String(0)
}

// MockDeliverer is a mock for Deliverer
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) DeliverWord(ctx context.Context, userID int64, entry domain.WordEntry) error {
	args := m.Called(ctx, userID, entry)
	return args.Error(0)
}

func (m *MockDeliverer) DeliverQuiz(ctx context.Context, userID int64, q domain.Quiz) (string, error) {
	args := m.Called(ctx, userID, q)
	return args.String(0), args.Error(1)
}

// MockAudioCleaner is a mock for AudioCleaner
type MockAudioCleaner struct {
	mock.Mock
}

func (m *MockAudioCleaner) CleanupStale(maxAge time.Duration) int {
	args := m.Called(maxAge)
	return args.Int(0)
}

// MockAudioProvider is a mock for AudioProvider
type MockAudioProvider struct {
	mock.Mock
}

func (m *MockAudioProvider) Synthesize(ctx context.Context, word string) (string, error) {
	args := m.Called(ctx, word)
	return args.String(0), args.Error(1)
}

func (m *MockAudioProvider) Cleanup(path string) {
	m.Called(path)
}

// MockSender is a mock for the bot's Send method. Send options are not matched.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	args := m.Called(to, what)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tele.Message), args.Error(1)
}
