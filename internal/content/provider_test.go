package content

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWordSource struct {
	mock.Mock
}

func (m *mockWordSource) RandomWords(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockTranslator struct {
	mock.Mock
}

func (m *mockTranslator) Translate(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

type mockExamples struct {
	mock.Mock
}

func (m *mockExamples) Example(ctx context.Context, word string) (string, error) {
	args := m.Called(ctx, word)
	return args.String(0), args.Error(1)
}

func newTestProvider(words WordSource, tr Translator, ex ExampleSource) *Provider {
	p := NewProvider(words, tr, ex, zap.NewNop())
	p.delay = 0
	return p
}

func TestProvider_Translate(t *testing.T) {
	tests := []struct {
		name      string
		results   []error
		expected  string
		callCount int
	}{
		{
			name:      "first call succeeds",
			results:   []error{nil},
			expected:  "חתול",
			callCount: 1,
		},
		{
			name:      "succeeds after a retry",
			results:   []error{fmt.Errorf("timeout"), nil},
			expected:  "חתול",
			callCount: 2,
		},
		{
			name:      "all attempts fail",
			results:   []error{fmt.Errorf("timeout"), fmt.Errorf("timeout"), fmt.Errorf("timeout")},
			expected:  TranslationFailed,
			callCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(mockTranslator)
			for _, res := range tt.results {
				if res != nil {
					tr.On("Translate", mock.Anything, "cat").Return("", res).Once()
				} else {
					tr.On("Translate", mock.Anything, "cat").Return("חתול", nil).Once()
				}
			}

			p := newTestProvider(new(mockWordSource), tr, new(mockExamples))

			assert.Equal(t, tt.expected, p.Translate(context.Background(), "cat"))
			tr.AssertNumberOfCalls(t, "Translate", tt.callCount)
		})
	}
}

func TestProvider_Example(t *testing.T) {
	tests := []struct {
		name     string
		example  string
		err      error
		expected string
	}{
		{
			name:     "real example",
			example:  "The cat sat on the mat.",
			expected: "The cat sat on the mat.",
		},
		{
			name:     "no example",
			err:      ErrNoExample,
			expected: "Try using the word cat in a sentence.",
		},
		{
			name:     "api error",
			err:      errors.New("boom"),
			expected: "Try using the word cat in a sentence.",
		},
		{
			name:     "blank example",
			example:  "  ",
			expected: "Try using the word cat in a sentence.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := new(mockExamples)
			ex.On("Example", mock.Anything, "cat").Return(tt.example, tt.err)

			p := newTestProvider(new(mockWordSource), new(mockTranslator), ex)

			assert.Equal(t, tt.expected, p.Example(context.Background(), "cat"))
		})
	}
}

func TestProvider_DailyWords_MixesMistakesAndFreshWords(t *testing.T) {
	words := new(mockWordSource)
	words.On("RandomWords", mock.Anything).
		Return([]string{"pan", "apple", "gato", "apple", "", "river", "cloud"}, nil).Once()

	tr := new(mockTranslator)
	tr.On("Translate", mock.Anything, mock.Anything).Return("תרגום", nil)

	ex := new(mockExamples)
	ex.On("Example", mock.Anything, mock.Anything).Return("", ErrNoExample)

	p := newTestProvider(words, tr, ex)
	rolls := []float64{0.1, 0.9}
	p.chance = func() float64 {
		r := rolls[0]
		rolls = rolls[1:]
		return r
	}

	history := History{
		Mistakes:     []string{"gato", "perro", "leche", "queso"},
		WordsLearned: []string{"pan", "gato", "perro"},
	}

	entries, err := p.DailyWords(context.Background(), history, 5)

	require.NoError(t, err)
	require.Len(t, entries, 5)

	assert.Equal(t, "gato", entries[0].Word)
	assert.Equal(t, "perro", entries[1].Word)
	assert.Equal(t, "leche", entries[2].Word)
	for _, e := range entries[:3] {
		assert.True(t, e.HasQuiz)
	}

	assert.Equal(t, "apple", entries[3].Word)
	assert.True(t, entries[3].HasQuiz)
	assert.Equal(t, "river", entries[4].Word)
	assert.False(t, entries[4].HasQuiz)

	assert.Equal(t, "תרגום", entries[4].Translation)
	assert.Equal(t, "Try using the word river in a sentence.", entries[4].Example)
	words.AssertExpectations(t)
}

func TestProvider_DailyWords_FetchesMoreBatches(t *testing.T) {
	words := new(mockWordSource)
	words.On("RandomWords", mock.Anything).Return([]string{"apple"}, nil).Once()
	words.On("RandomWords", mock.Anything).Return([]string{"apple", "river"}, nil).Once()

	tr := new(mockTranslator)
	tr.On("Translate", mock.Anything, mock.Anything).Return("תרגום", nil)
	ex := new(mockExamples)
	ex.On("Example", mock.Anything, mock.Anything).Return("An example.", nil)

	p := newTestProvider(words, tr, ex)

	entries, err := p.DailyWords(context.Background(), History{}, 2)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "apple", entries[0].Word)
	assert.Equal(t, "river", entries[1].Word)
	words.AssertExpectations(t)
}

func TestProvider_DailyWords_SourceUnavailable(t *testing.T) {
	words := new(mockWordSource)
	words.On("RandomWords", mock.Anything).Return(nil, fmt.Errorf("503"))

	p := newTestProvider(words, new(mockTranslator), new(mockExamples))
	p.attempts = 1

	entries, err := p.DailyWords(context.Background(), History{}, 3)

	assert.Error(t, err)
	assert.Empty(t, entries)
	words.AssertNumberOfCalls(t, "RandomWords", maxBatches)
}

func TestProvider_DailyWords_SourceExhausted(t *testing.T) {
	words := new(mockWordSource)
	words.On("RandomWords", mock.Anything).Return([]string{"pan"}, nil)

	p := newTestProvider(words, new(mockTranslator), new(mockExamples))

	entries, err := p.DailyWords(context.Background(), History{WordsLearned: []string{"pan"}}, 3)

	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProvider_DailyWords_ZeroCount(t *testing.T) {
	p := newTestProvider(new(mockWordSource), new(mockTranslator), new(mockExamples))

	entries, err := p.DailyWords(context.Background(), History{Mistakes: []string{"gato"}}, 0)

	assert.NoError(t, err)
	assert.Empty(t, entries)
}
