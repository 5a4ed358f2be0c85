// Package quiz keeps track of quizzes that were sent but not answered yet.
package quiz

import (
	"sync"
	"time"

	"wordtrainer/internal/domain"
)

// PollTable maps a dispatched quiz id to the answer it expects.
// Entries live in memory only and are lost on restart.
type PollTable struct {
	mu      sync.Mutex
	entries map[string]domain.PendingQuiz
	now     func() time.Time
}

// NewPollTable creates an empty table
func NewPollTable() *PollTable {
	return &PollTable{
		entries: make(map[string]domain.PendingQuiz),
		now:     time.Now,
	}
}

// Register stores a pending quiz, replacing any entry with the same id
func (t *PollTable) Register(quizID, correctWord string, userID int64, options []string) {
	opts := make([]string, len(options))
	copy(opts, options)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[quizID] = domain.PendingQuiz{
		QuizID:      quizID,
		CorrectWord: correctWord,
		UserID:      userID,
		Options:     opts,
		CreatedAt:   t.now(),
	}
}

// Resolve returns the pending quiz for quizID
func (t *PollTable) Resolve(quizID string) (domain.PendingQuiz, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[quizID]
	return p, ok
}

// Remove deletes the entry for quizID, if any
func (t *PollTable) Remove(quizID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, quizID)
}

// Take resolves and removes quizID in one step, so an answer is credited at most once
func (t *PollTable) Take(quizID string) (domain.PendingQuiz, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[quizID]
	delete(t.entries, quizID)
	return p, ok
}

// Len returns the number of unanswered quizzes
func (t *PollTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sweep evicts quizzes registered more than maxAge ago and returns how many were dropped
func (t *PollTable) Sweep(maxAge time.Duration) int {
	cutoff := t.now().Add(-maxAge)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, p := range t.entries {
		if p.CreatedAt.Before(cutoff) {
			delete(t.entries, id)
			removed++
		}
	}
	return removed
}
