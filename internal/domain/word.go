package domain

import "time"

// WordEntry is one item of a session's word list
type WordEntry struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Example     string `json:"example"`
	HasQuiz     bool   `json:"hasQuiz"`
}

// Quiz is a multiple-choice check attached to a word: the user sees the
// translation and picks the word among shuffled options
type Quiz struct {
	Word         string
	Prompt       string
	Options      []string
	CorrectIndex int
}

// CorrectOption returns the option the user is expected to pick
func (q Quiz) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// PendingQuiz correlates a dispatched quiz with its expected answer
type PendingQuiz struct {
	QuizID      string
	CorrectWord string
	UserID      int64
	Options     []string
	CreatedAt   time.Time
}

// CorrectIndex returns the position of the correct word among the options, or -1
func (p PendingQuiz) CorrectIndex() int {
	for i, o := range p.Options {
		if o == p.CorrectWord {
			return i
		}
	}
	return -1
}
