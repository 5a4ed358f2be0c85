package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"wordtrainer/internal/service"
	"wordtrainer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendScheduledDaily(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockDue struct {
	mock.Mock
}

func (m *mockDue) DueForDaily(today string) ([]int64, error) {
	args := m.Called(today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockDue) Today() string {
	return m.Called().String(0)
}

type mockCleaner struct {
	mock.Mock
}

func (m *mockCleaner) CleanupOldData() error {
	return m.Called().Error(0)
}

func (m *mockCleaner) SweepPolls() int {
	return m.Called().Int(0)
}

func TestScheduler_SendDaily(t *testing.T) {
	tests := []struct {
		name         string
		due          []int64
		dueErr       error
		sendErrs     map[int64]error
		expectedSent int
		expectedTo   []int64
	}{
		{
			name:         "only allowed users are sent to",
			due:          []int64{1, 2, 3},
			expectedSent: 2,
			expectedTo:   []int64{1, 3},
		},
		{
			name:         "failures do not stop the run",
			due:          []int64{1, 3},
			sendErrs:     map[int64]error{1: service.ErrNoContent},
			expectedSent: 1,
			expectedTo:   []int64{1, 3},
		},
		{
			name:         "other errors are logged",
			due:          []int64{1, 3},
			sendErrs:     map[int64]error{3: errors.New("blocked by user")},
			expectedSent: 1,
			expectedTo:   []int64{1, 3},
		},
		{
			name:         "listing error",
			dueErr:       fmt.Errorf("store: %w", errors.New("corrupt")),
			expectedSent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := new(mockDue)
			due.On("Today").Return("2024-05-10")
			due.On("DueForDaily", "2024-05-10").Return(tt.due, tt.dueErr)

			sender := new(mockSender)
			for _, id := range tt.expectedTo {
				sender.On("SendScheduledDaily", mock.Anything, id).Return(tt.sendErrs[id])
			}

			s := New(time.UTC, "09:00", sender, due, service.NewAuthService([]int64{1, 3}), new(mockCleaner), testutil.NewTestLogger())

			sent := s.SendDaily(context.Background())

			assert.Equal(t, tt.expectedSent, sent)
			sender.AssertExpectations(t)
			sender.AssertNumberOfCalls(t, "SendScheduledDaily", len(tt.expectedTo))
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	cleaner := new(mockCleaner)
	cleaner.On("CleanupOldData").Return(nil).Maybe()
	cleaner.On("SweepPolls").Return(0).Maybe()

	s := New(time.UTC, "09:00", new(mockSender), new(mockDue), service.NewAuthService(nil), cleaner, testutil.NewTestLogger())

	require.NoError(t, s.Start())
	assert.Len(t, s.scheduler.Jobs(), 3)
	s.Stop()
}

func TestScheduler_StartBadTime(t *testing.T) {
	s := New(time.UTC, "25:99", new(mockSender), new(mockDue), service.NewAuthService(nil), new(mockCleaner), testutil.NewTestLogger())

	assert.Error(t, s.Start())
}
