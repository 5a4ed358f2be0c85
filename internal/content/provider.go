// Package content produces the words users practice: fresh words from a
// random-word source, translations and example sentences.
package content

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"wordtrainer/internal/domain"

	"go.uber.org/zap"
)

// TranslationFailed is shown in place of a translation that could not be fetched
const TranslationFailed = "[תרגום נכשל]"

const (
	// MaxRetryWords is how many past mistakes are mixed into a daily list
	MaxRetryWords = 3
	// DefaultQuizChance is the share of fresh daily words that carry a quiz
	DefaultQuizChance = 0.6

	maxBatches   = 5
	callAttempts = 3
	retryDelay   = 200 * time.Millisecond
)

// WordSource returns batches of candidate words
type WordSource interface {
	RandomWords(ctx context.Context) ([]string, error)
}

// Translator translates a single word
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// ExampleSource returns an example sentence for a word
type ExampleSource interface {
	Example(ctx context.Context, word string) (string, error)
}

// History is the part of a user's record that shapes their daily list
type History struct {
	Mistakes     []string
	WordsLearned []string
}

// Provider builds word entries from the external sources
type Provider struct {
	words      WordSource
	translator Translator
	examples   ExampleSource
	logger     *zap.Logger

	quizChance float64
	chance     func() float64
	attempts   int
	delay      time.Duration
}

// NewProvider creates a content provider
func NewProvider(words WordSource, translator Translator, examples ExampleSource, logger *zap.Logger) *Provider {
	return &Provider{
		words:      words,
		translator: translator,
		examples:   examples,
		logger:     logger,
		quizChance: DefaultQuizChance,
		chance:     rand.Float64,
		attempts:   callAttempts,
		delay:      retryDelay,
	}
}

// Translate never fails: lookup errors yield TranslationFailed
func (p *Provider) Translate(ctx context.Context, word string) string {
	var out string
	err := retry(ctx, p.attempts, p.delay, func() error {
		var err error
		out, err = p.translator.Translate(ctx, word)
		return err
	})
	if err != nil {
		p.logger.Warn("Translation failed",
			zap.String("word", word),
			zap.Error(err),
		)
		return TranslationFailed
	}
	return out
}

// Example returns a real example sentence, or a generic one when none is found
func (p *Provider) Example(ctx context.Context, word string) string {
	example, err := p.examples.Example(ctx, word)
	if err != nil || strings.TrimSpace(example) == "" {
		if err != nil && !errors.Is(err, ErrNoExample) {
			p.logger.Warn("Failed to get example",
				zap.String("word", word),
				zap.Error(err),
			)
		}
		return fmt.Sprintf("Try using the word %s in a sentence.", word)
	}
	return example
}

// DailyWords returns up to count entries: the first MaxRetryWords mistakes with a
// forced quiz, then fresh words the user has not seen yet. An error is returned
// only when nothing at all could be produced.
func (p *Provider) DailyWords(ctx context.Context, history History, count int) ([]domain.WordEntry, error) {
	if count <= 0 {
		return nil, nil
	}

	retryWords := history.Mistakes
	if len(retryWords) > MaxRetryWords {
		retryWords = retryWords[:MaxRetryWords]
	}

	seen := make(map[string]struct{}, len(history.WordsLearned)+len(retryWords))
	for _, w := range history.WordsLearned {
		seen[w] = struct{}{}
	}

	entries := make([]domain.WordEntry, 0, count)
	for _, w := range retryWords {
		if len(entries) >= count {
			break
		}
		seen[w] = struct{}{}
		entries = append(entries, domain.WordEntry{
			Word:        w,
			Translation: p.Translate(ctx, w),
			Example:     p.Example(ctx, w),
			HasQuiz:     true,
		})
	}

	var lastErr error
	for batch := 0; batch < maxBatches && len(entries) < count; batch++ {
		var words []string
		err := retry(ctx, p.attempts, p.delay, func() error {
			var err error
			words, err = p.words.RandomWords(ctx)
			return err
		})
		if err != nil {
			lastErr = err
			p.logger.Warn("Failed to fetch random words",
				zap.Int("batch", batch),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		for _, w := range words {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}

			entries = append(entries, domain.WordEntry{
				Word:        w,
				Translation: p.Translate(ctx, w),
				Example:     p.Example(ctx, w),
				HasQuiz:     p.chance() < p.quizChance,
			})
			if len(entries) >= count {
				break
			}
		}
	}

	if len(entries) == 0 && lastErr != nil {
		return nil, fmt.Errorf("failed to fetch words: %w", lastErr)
	}
	return entries, nil
}
