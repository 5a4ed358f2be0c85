package domain

import "sort"

// SessionType tags the kind of practice run a user is in
type SessionType string

const (
	SessionNone   SessionType = ""
	SessionDaily  SessionType = "daily"
	SessionRetry  SessionType = "retry"
	SessionReview SessionType = "review"
)

// MarshalJSON encodes SessionNone as null
func (t SessionType) MarshalJSON() ([]byte, error) {
	if t == SessionNone {
		return []byte("null"), nil
	}
	return []byte(`"` + string(t) + `"`), nil
}

// UnmarshalJSON accepts null or one of the known session types
func (t *SessionType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*t = SessionNone
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		*t = SessionNone
		return nil
	}

	switch v := SessionType(s[1 : len(s)-1]); v {
	case SessionDaily, SessionRetry, SessionReview:
		*t = v
	default:
		*t = SessionNone
	}
	return nil
}

// Stats holds monotonic quiz counters
type Stats struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// UserSession is an in-progress run through a fixed list of words
type UserSession struct {
	WordList     []WordEntry `json:"wordList"`
	CurrentIndex int         `json:"currentIndex"`
}

// Complete reports whether every word of the session has been delivered
func (s *UserSession) Complete() bool {
	return s.CurrentIndex >= len(s.WordList)
}

// Current returns the word at the cursor, or false when the session is complete
func (s *UserSession) Current() (WordEntry, bool) {
	if s.Complete() {
		return WordEntry{}, false
	}
	return s.WordList[s.CurrentIndex], true
}

// UserRecord is the persisted learning state of one user
type UserRecord struct {
	TrainingDays  []string     `json:"trainingDays"`
	CurrentDay    DayLabel     `json:"currentDay"`
	Mistakes      []string     `json:"mistakes"`
	WordsLearned  []string     `json:"wordsLearned"`
	Active        bool         `json:"active"`
	LastTrainedAt *string      `json:"lastTrainedAt"`
	Stats         Stats        `json:"stats"`
	Session       *UserSession `json:"session"`
	SessionType   SessionType  `json:"sessionType"`
}

// NewUserRecord returns a record with every field at its default
func NewUserRecord() *UserRecord {
	u := &UserRecord{}
	u.Normalize()
	return u
}

// Normalize back-fills fields missing from records written by older
// versions and restores the record invariants. It is applied once per load.
func (u *UserRecord) Normalize() {
	if u.TrainingDays == nil {
		u.TrainingDays = []string{}
	}
	if u.Mistakes == nil {
		u.Mistakes = []string{}
	}
	if u.WordsLearned == nil {
		u.WordsLearned = []string{}
	}
	u.TrainingDays = dedupe(u.TrainingDays)
	u.Mistakes = dedupe(u.Mistakes)

	if u.Stats.Correct < 0 {
		u.Stats.Correct = 0
	}
	if u.Stats.Incorrect < 0 {
		u.Stats.Incorrect = 0
	}

	if u.Session != nil {
		if len(u.Session.WordList) == 0 {
			u.Session = nil
		} else if u.Session.CurrentIndex < 0 {
			u.Session.CurrentIndex = 0
		} else if u.Session.CurrentIndex > len(u.Session.WordList) {
			u.Session.CurrentIndex = len(u.Session.WordList)
		}
	}
	if u.Session == nil {
		u.SessionType = SessionNone
	}
}

// HasMistake reports whether word is in the mistake set
func (u *UserRecord) HasMistake(word string) bool {
	for _, m := range u.Mistakes {
		if m == word {
			return true
		}
	}
	return false
}

// AddMistake inserts word into the mistake set if absent
func (u *UserRecord) AddMistake(word string) {
	if !u.HasMistake(word) {
		u.Mistakes = append(u.Mistakes, word)
	}
}

// RemoveMistake drops word from the mistake set
func (u *UserRecord) RemoveMistake(word string) {
	kept := u.Mistakes[:0]
	for _, m := range u.Mistakes {
		if m != word {
			kept = append(kept, m)
		}
	}
	u.Mistakes = kept
}

// MarkTrainingDay records date as a training day if it is not there yet
func (u *UserRecord) MarkTrainingDay(date string) {
	for _, d := range u.TrainingDays {
		if d == date {
			return
		}
	}
	u.TrainingDays = append(u.TrainingDays, date)
}

// TrainedOn reports whether the last daily session started on date
func (u *UserRecord) TrainedOn(date string) bool {
	return u.LastTrainedAt != nil && *u.LastTrainedAt == date
}

// ClearSession drops the active session and its tag
func (u *UserRecord) ClearSession() {
	u.Session = nil
	u.SessionType = SessionNone
}

// Users is the whole persisted document, keyed by platform user id
type Users map[int64]*UserRecord

// GetOrCreate returns the record for userID, creating a default one if needed
func (us Users) GetOrCreate(userID int64) *UserRecord {
	u, ok := us[userID]
	if !ok || u == nil {
		u = NewUserRecord()
		us[userID] = u
	}
	return u
}

// Normalize applies the defaulting step to every record
func (us Users) Normalize() {
	for id, u := range us {
		if u == nil {
			us[id] = NewUserRecord()
			continue
		}
		u.Normalize()
	}
}

// LearnedPool returns the distinct words learned by any user, except exclude
func (us Users) LearnedPool(exclude string) []string {
	seen := make(map[string]struct{})
	var pool []string
	for _, u := range us {
		if u == nil {
			continue
		}
		for _, w := range u.WordsLearned {
			if w == exclude {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			pool = append(pool, w)
		}
	}
	sort.Strings(pool)
	return pool
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
